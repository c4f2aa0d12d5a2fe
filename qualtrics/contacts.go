package qualtrics

import (
	"context"
	"net/http"

	"github.com/s0up4200/surveyarr/table"
)

// Contacts returns a paginator over the members of a mailing list.
func (c *Client) Contacts(listID string) *Paginator[Contact] {
	return newPaginator[Contact](c, c.endpoint("mailinglists", listID, "contacts"), authLower)
}

// GetContacts retrieves all contacts of a mailing list.
func (c *Client) GetContacts(ctx context.Context, listID string) ([]Contact, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return nil, err
	}
	return c.Contacts(listID).Collect(ctx)
}

// ContactsTable retrieves all contacts of a mailing list as a table.
func (c *Client) ContactsTable(ctx context.Context, listID string) (*table.Table, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return nil, err
	}
	return c.listTable(ctx, c.endpoint("mailinglists", listID, "contacts"), authLower)
}

// CreateContact adds a single contact to a mailing list and returns its id.
func (c *Client) CreateContact(ctx context.Context, listID string, contact ContactInput) (string, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return "", err
	}
	if err := validateParams(contact); err != nil {
		return "", err
	}
	req := c.newRequest(http.MethodPost, c.endpoint("mailinglists", listID, "contacts"), authUpperJSON, contact)
	return c.callID(ctx, req)
}

// CreateContactsBulk formats rows and submits them as one contact import.
// It returns the import progress id.
func (c *Client) CreateContactsBulk(ctx context.Context, listID string, rows *table.Table, opts FormatOptions) (string, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return "", err
	}
	contacts, err := FormatContacts(rows, opts)
	if err != nil {
		return "", err
	}
	return c.importContacts(ctx, listID, contacts)
}

func (c *Client) importContacts(ctx context.Context, listID string, contacts []ContactInput) (string, error) {
	body := struct {
		Contacts []ContactInput `json:"contacts"`
	}{Contacts: contacts}

	req := c.newRequest(http.MethodPost, c.endpoint("mailinglists", listID, "contactimports"), authUpperJSON, body)
	importID, err := c.callID(ctx, req)
	if err != nil {
		return "", err
	}

	c.logger.Debug().
		Str("mailing_list_id", listID).
		Str("import_id", importID).
		Int("contacts", len(contacts)).
		Msg("Started contact import")

	return importID, nil
}

// GetContactImportProgress reports the state of a bulk contact import.
func (c *Client) GetContactImportProgress(ctx context.Context, listID, importID string) (*ContactImportProgress, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return nil, err
	}
	if err := requireID("importId", importID); err != nil {
		return nil, err
	}
	req := c.newRequest(http.MethodGet, c.endpoint("mailinglists", listID, "contactimports", importID), authLower, nil)
	progress, err := callResult[ContactImportProgress](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpdateContact changes fields of an existing contact.
func (c *Client) UpdateContact(ctx context.Context, listID, contactID string, update ContactUpdate) error {
	if err := requireID("mailingListId", listID); err != nil {
		return err
	}
	if err := requireID("contactId", contactID); err != nil {
		return err
	}
	if err := validateParams(update); err != nil {
		return err
	}
	req := c.newRequest(http.MethodPut, c.endpoint("mailinglists", listID, "contacts", contactID), authUpperJSON, update)
	return c.callNoResult(ctx, req)
}

// DeleteContact removes a contact from a mailing list.
func (c *Client) DeleteContact(ctx context.Context, listID, contactID string) error {
	if err := requireID("mailingListId", listID); err != nil {
		return err
	}
	if err := requireID("contactId", contactID); err != nil {
		return err
	}
	req := c.newRequest(http.MethodDelete, c.endpoint("mailinglists", listID, "contacts", contactID), authUpper, nil)
	return c.callNoResult(ctx, req)
}

// AddRecordsToMailingList formats rows and posts them one contact at a
// time. Failed rows are reported in the result; only a formatting error
// or a cancelled context aborts the whole call.
func (c *Client) AddRecordsToMailingList(ctx context.Context, listID string, rows *table.Table, opts FormatOptions) (*AddRecordsResult, error) {
	if err := requireID("mailingListId", listID); err != nil {
		return nil, err
	}
	contacts, err := FormatContacts(rows, opts)
	if err != nil {
		return nil, err
	}

	result := &AddRecordsResult{}
	url := c.endpoint("mailinglists", listID, "contacts")
	for i, contact := range contacts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		req := c.newRequest(http.MethodPost, url, authUpperJSON, contact)
		id, err := c.callID(ctx, req)
		if err != nil {
			c.logger.Debug().
				Err(err).
				Str("email", contact.Email).
				Msg("Failed to add contact to mailing list")
			result.Failed = append(result.Failed, RecordFailure{Row: i, Email: contact.Email, Err: err})
			continue
		}
		result.Added = append(result.Added, id)
	}

	return result, nil
}
