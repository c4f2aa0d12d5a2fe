package qualtrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/s0up4200/surveyarr/table"
)

// contactImportPrefix marks the id of a successfully started contact import.
const contactImportPrefix = "PGRS_"

// CreateMailingListParams describes a new mailing list and, optionally, the
// contacts to import into it.
type CreateMailingListParams struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category,omitempty"`
	// Owner is the library id; empty uses the default library owner.
	Owner    string        `json:"libraryId,omitempty"`
	Contacts *table.Table  `json:"-"`
	Format   FormatOptions `json:"-"`
}

// MailingLists returns a paginator over the mailing list listing.
func (c *Client) MailingLists() *Paginator[MailingList] {
	return newPaginator[MailingList](c, c.endpoint("mailinglists"), authLower)
}

// ListMailingLists retrieves all mailing lists.
func (c *Client) ListMailingLists(ctx context.Context) ([]MailingList, error) {
	return c.MailingLists().Collect(ctx)
}

// MailingListsTable retrieves all mailing lists as a table.
func (c *Client) MailingListsTable(ctx context.Context) (*table.Table, error) {
	return c.listTable(ctx, c.endpoint("mailinglists"), authLower)
}

// FindMailingListID returns the id of the only mailing list whose name
// contains search.
func (c *Client) FindMailingListID(ctx context.Context, search string) (string, error) {
	lists, err := c.ListMailingLists(ctx)
	if err != nil {
		return "", err
	}
	return matchName("mailing lists", search, lists, func(ml MailingList) Candidate {
		return Candidate{ID: ml.ID, Name: ml.Name}
	})
}

// CreateMailingList creates a mailing list and returns its id. When
// Contacts has rows they are bulk imported; if the import does not start a
// *ContactImportError carrying the new list id is returned.
func (c *Client) CreateMailingList(ctx context.Context, params CreateMailingListParams) (string, error) {
	if params.Owner == "" {
		params.Owner = c.cfg.DefaultLibraryOwner
	}
	if err := validateParams(params); err != nil {
		return "", err
	}
	if err := requireID("libraryId", params.Owner); err != nil {
		return "", err
	}

	// Format before creating so a bad batch leaves nothing behind
	var contacts []ContactInput
	if params.Contacts != nil && params.Contacts.Len() > 0 {
		var err error
		if contacts, err = FormatContacts(params.Contacts, params.Format); err != nil {
			return "", err
		}
	}

	req := c.newRequest(http.MethodPost, c.endpoint("mailinglists"), authUpperJSON, params)
	listID, err := c.callID(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create mailing list: %w", err)
	}

	c.logger.Debug().
		Str("mailing_list_id", listID).
		Str("name", params.Name).
		Msg("Created mailing list")

	if len(contacts) == 0 {
		return listID, nil
	}

	importID, err := c.importContacts(ctx, listID, contacts)
	if err != nil {
		return listID, &ContactImportError{MailingListID: listID, Err: err}
	}
	if !strings.HasPrefix(importID, contactImportPrefix) {
		return listID, &ContactImportError{MailingListID: listID, ImportID: importID}
	}
	return listID, nil
}

// GetMailingList retrieves a mailing list's details.
func (c *Client) GetMailingList(ctx context.Context, listID string) (Resource, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return nil, err
	}
	req := c.newRequest(http.MethodGet, c.endpoint("mailinglists", listID), authLower, nil)
	return callResult[Resource](ctx, c, req)
}

// UpdateMailingList would synchronise a mailing list with a contact table.
// It is not supported and always returns ErrNotImplemented without
// contacting the platform.
func (c *Client) UpdateMailingList(ctx context.Context, listID string, records *table.Table) error {
	return fmt.Errorf("update mailing list %s: %w", listID, ErrNotImplemented)
}

// DeleteMailingList deletes a mailing list.
func (c *Client) DeleteMailingList(ctx context.Context, listID string) error {
	if err := requireID("mailingListId", listID); err != nil {
		return err
	}
	req := c.newRequest(http.MethodDelete, c.endpoint("mailinglists", listID), authUpper, nil)
	return c.callNoResult(ctx, req)
}
