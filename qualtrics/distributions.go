package qualtrics

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultLinkExpiryDays is how long generated links stay valid by default.
	DefaultLinkExpiryDays = 130

	linkExpiryFormat    = "2006-01-02 15:04:05"
	defaultLinkType     = "Individual"
	defaultLinkDistDesc = "Survey distribution"
)

// LinkDistributionParams describes a personal-link distribution.
type LinkDistributionParams struct {
	SurveyID      string `validate:"required"`
	MailingListID string `validate:"required"`
	// DaysToExpiry defaults to DefaultLinkExpiryDays.
	DaysToExpiry int `validate:"gte=0"`
	Description  string
	LinkType     string `validate:"omitempty,oneof=Individual Anonymous Multiple"`
}

// SendSurveyParams describes an email distribution of a survey.
type SendSurveyParams struct {
	SurveyID      string `validate:"required"`
	MessageID     string `validate:"required"`
	MailingListID string `validate:"required"`
	FromEmail     string `validate:"required,email"`
	FromName      string `validate:"required"`
	Subject       string `validate:"required"`
	// LibraryID defaults to the configured default library owner.
	LibraryID string
	// ReplyToEmail defaults to FromEmail.
	ReplyToEmail string `validate:"omitempty,email"`
	LinkType     string
	// SendTime defaults to now; Expiration to now plus DefaultActivationDays.
	SendTime   time.Time
	Expiration time.Time
}

// ReminderParams describes a reminder for an earlier distribution.
type ReminderParams struct {
	ParentDistributionID string `validate:"required"`
	MessageID            string `validate:"required"`
	FromEmail            string `validate:"required,email"`
	FromName             string `validate:"required"`
	Subject              string `validate:"required"`
	LibraryID            string
	ReplyToEmail         string `validate:"omitempty,email"`
	SendTime             time.Time
}

type distributionHeader struct {
	FromEmail    string `json:"fromEmail"`
	FromName     string `json:"fromName"`
	ReplyToEmail string `json:"replyToEmail"`
	Subject      string `json:"subject"`
}

type distributionMessage struct {
	LibraryID string `json:"libraryId"`
	MessageID string `json:"messageId"`
}

// DistributionLinks returns a paginator over the links of a distribution.
func (c *Client) DistributionLinks(distributionID, surveyID string) *Paginator[DistributionLink] {
	start := c.endpoint("distributions", distributionID, "links") + "?" + url.Values{"surveyId": {surveyID}}.Encode()
	return newPaginator[DistributionLink](c, start, authUpper)
}

// ListDistributionLinks retrieves every link generated for a distribution.
func (c *Client) ListDistributionLinks(ctx context.Context, distributionID, surveyID string) ([]DistributionLink, error) {
	if err := requireID("distributionId", distributionID); err != nil {
		return nil, err
	}
	if err := requireID("surveyId", surveyID); err != nil {
		return nil, err
	}
	return c.DistributionLinks(distributionID, surveyID).Collect(ctx)
}

// CreateLinksForMailingList creates a personal-link distribution for every
// contact of a mailing list and returns the generated links.
func (c *Client) CreateLinksForMailingList(ctx context.Context, params LinkDistributionParams) ([]DistributionLink, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if params.DaysToExpiry == 0 {
		params.DaysToExpiry = DefaultLinkExpiryDays
	}
	if params.Description == "" {
		params.Description = defaultLinkDistDesc
	}
	if params.LinkType == "" {
		params.LinkType = defaultLinkType
	}

	expiry := c.now().UTC().AddDate(0, 0, params.DaysToExpiry)
	body := map[string]string{
		"action":         "CreateDistribution",
		"surveyId":       params.SurveyID,
		"mailingListId":  params.MailingListID,
		"description":    params.Description,
		"expirationDate": expiry.Format(linkExpiryFormat),
		"linkType":       params.LinkType,
	}

	req := c.newRequest(http.MethodPost, c.endpoint("distributions"), authUpperJSON, body)
	distributionID, err := c.callID(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("distribution_id", distributionID).
		Str("survey_id", params.SurveyID).
		Msg("Created link distribution")

	return c.ListDistributionLinks(ctx, distributionID, params.SurveyID)
}

// SendSurvey emails a survey invitation to a mailing list and returns the
// distribution id.
func (c *Client) SendSurvey(ctx context.Context, params SendSurveyParams) (string, error) {
	if err := validateParams(params); err != nil {
		return "", err
	}

	now := c.now()
	if params.ReplyToEmail == "" {
		params.ReplyToEmail = params.FromEmail
	}
	if params.LibraryID == "" {
		params.LibraryID = c.cfg.DefaultLibraryOwner
	}
	if params.LinkType == "" {
		params.LinkType = defaultLinkType
	}
	if params.SendTime.IsZero() {
		params.SendTime = now
	}
	if params.Expiration.IsZero() {
		params.Expiration = now.Add(DefaultActivationDays * 24 * time.Hour)
	}
	if err := requireID("libraryId", params.LibraryID); err != nil {
		return "", err
	}

	body := struct {
		SurveyLink struct {
			SurveyID       string `json:"surveyId"`
			ExpirationDate string `json:"expirationDate"`
			Type           string `json:"type"`
		} `json:"surveyLink"`
		Header     distributionHeader  `json:"header"`
		Message    distributionMessage `json:"message"`
		Recipients struct {
			MailingListID string `json:"mailingListId"`
		} `json:"recipients"`
		SendDate string `json:"sendDate"`
	}{
		Header: distributionHeader{
			FromEmail:    params.FromEmail,
			FromName:     params.FromName,
			ReplyToEmail: params.ReplyToEmail,
			Subject:      params.Subject,
		},
		Message:  distributionMessage{LibraryID: params.LibraryID, MessageID: params.MessageID},
		SendDate: params.SendTime.UTC().Format(activationTimeFormat),
	}
	body.SurveyLink.SurveyID = params.SurveyID
	body.SurveyLink.ExpirationDate = params.Expiration.UTC().Format(activationTimeFormat)
	body.SurveyLink.Type = params.LinkType
	body.Recipients.MailingListID = params.MailingListID

	req := c.newRequest(http.MethodPost, c.endpoint("distributions"), authUpperJSON, body)
	return c.callID(ctx, req)
}

// SendReminder schedules a reminder for an earlier distribution and returns
// the reminder's distribution id.
func (c *Client) SendReminder(ctx context.Context, params ReminderParams) (string, error) {
	if err := validateParams(params); err != nil {
		return "", err
	}
	if params.ReplyToEmail == "" {
		params.ReplyToEmail = params.FromEmail
	}
	if params.LibraryID == "" {
		params.LibraryID = c.cfg.DefaultLibraryOwner
	}
	if params.SendTime.IsZero() {
		params.SendTime = c.now()
	}
	if err := requireID("libraryId", params.LibraryID); err != nil {
		return "", err
	}

	body := struct {
		Header   distributionHeader  `json:"header"`
		Message  distributionMessage `json:"message"`
		SendDate string              `json:"sendDate"`
	}{
		Header: distributionHeader{
			FromEmail:    params.FromEmail,
			FromName:     params.FromName,
			ReplyToEmail: params.ReplyToEmail,
			Subject:      params.Subject,
		},
		Message:  distributionMessage{LibraryID: params.LibraryID, MessageID: params.MessageID},
		SendDate: params.SendTime.UTC().Format(activationTimeFormat),
	}

	req := c.newRequest(http.MethodPost, c.endpoint("distributions", params.ParentDistributionID, "reminders"), authUpperJSON, body)
	res, err := callResult[struct {
		DistributionID string `json:"distributionId"`
	}](ctx, c, req)
	if err != nil {
		return "", err
	}
	if res.DistributionID == "" {
		return "", &ProtocolError{Method: req.Method, URL: req.URL, Reason: "result has no distributionId"}
	}
	return res.DistributionID, nil
}
