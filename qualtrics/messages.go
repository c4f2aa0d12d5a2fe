package qualtrics

import (
	"context"
	"net/http"
)

// Library message categories accepted by the platform.
const (
	MessageInvite         = "invite"
	MessageInactiveSurvey = "inactiveSurvey"
	MessageReminder       = "reminder"
	MessageThankYou       = "thankYou"
	MessageEndOfSurvey    = "endOfSurvey"
	MessageGeneral        = "general"
	MessageValidation     = "validation"
	MessageLookAndFeel    = "lookAndFeel"
	MessageEmailSubject   = "emailSubject"
	MessageSMSInvite      = "smsInvite"
)

// LibraryMessage is a reusable message stored in a library.
type LibraryMessage struct {
	Description string `json:"description" validate:"required"`
	// Messages maps a language code such as "en" to the message text.
	Messages map[string]string `json:"messages" validate:"required,min=1"`
	// Category defaults to MessageInvite.
	Category string `json:"category" validate:"oneof=invite inactiveSurvey reminder thankYou endOfSurvey general validation lookAndFeel emailSubject smsInvite"`
	// Owner is the library id; empty uses the default library owner.
	Owner string `json:"-"`
}

// CreateLibraryMessage stores a message in a library and returns its id.
func (c *Client) CreateLibraryMessage(ctx context.Context, msg LibraryMessage) (string, error) {
	if msg.Category == "" {
		msg.Category = MessageInvite
	}
	if msg.Owner == "" {
		msg.Owner = c.cfg.DefaultLibraryOwner
	}
	if err := validateParams(msg); err != nil {
		return "", err
	}
	if err := requireID("libraryId", msg.Owner); err != nil {
		return "", err
	}

	req := c.newRequest(http.MethodPost, c.endpoint("libraries", msg.Owner, "messages"), authUpperJSON, msg)
	return c.callID(ctx, req)
}
