package qualtrics

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/s0up4200/surveyarr/table"
)

// DefaultLanguage is the contact and user language used when none is given.
const DefaultLanguage = "en"

// FormatOptions supplies defaults for contact fields missing from a batch.
type FormatOptions struct {
	Unsubscribed bool
	Language     string
}

const (
	colEmail             = "email"
	colFirstName         = "firstname"
	colLastName          = "lastname"
	colExternalReference = "externalreference"
	colUnsubscribed      = "unsubscribed"
	colLanguage          = "language"
)

var recognizedColumns = map[string]bool{
	colEmail:             true,
	colFirstName:         true,
	colLastName:          true,
	colExternalReference: true,
	colUnsubscribed:      true,
	colLanguage:          true,
}

// FormatContacts converts a table of contact rows into the contact shape the
// platform accepts. Column names match case-insensitively, so a batch with two
// columns differing only by case is rejected. Every row must carry an email;
// otherwise the whole batch is rejected. Columns other than the recognised
// ones become embedded data, skipping null cells.
func FormatContacts(rows *table.Table, opts FormatOptions) ([]ContactInput, error) {
	if rows == nil {
		return nil, &ValidationError{Field: colEmail, Row: -1, Err: ErrMissingEmail}
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	// lowercased name -> original column
	columns := make(map[string]string)
	var extra []string
	for _, col := range rows.Columns() {
		lower := strings.ToLower(col)
		if prev, dup := columns[lower]; dup {
			return nil, &ValidationError{
				Field:  lower,
				Row:    -1,
				Reason: fmt.Sprintf("columns %q and %q differ only by case", prev, col),
			}
		}
		columns[lower] = col
		if !recognizedColumns[lower] {
			extra = append(extra, lower)
		}
	}

	if _, ok := columns[colEmail]; !ok {
		return nil, &ValidationError{Field: colEmail, Row: -1, Reason: "column is missing", Err: ErrMissingEmail}
	}

	out := make([]ContactInput, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		value := func(name string) any {
			col, ok := columns[name]
			if !ok {
				return nil
			}
			v, _ := rows.Value(i, col)
			return v
		}

		email := cellString(value(colEmail))
		if email == "" {
			return nil, &ValidationError{Field: colEmail, Row: i, Err: ErrMissingEmail}
		}

		contact := ContactInput{
			Email:             email,
			FirstName:         cellString(value(colFirstName)),
			LastName:          cellString(value(colLastName)),
			ExternalReference: cellString(value(colExternalReference)),
			Unsubscribed:      opts.Unsubscribed,
			Language:          opts.Language,
		}

		if v := value(colUnsubscribed); !table.IsNull(v) {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return nil, &ValidationError{Field: colUnsubscribed, Row: i, Reason: fmt.Sprintf("cannot interpret %v as a boolean", v), Err: err}
			}
			contact.Unsubscribed = b
		}
		if lang := cellString(value(colLanguage)); lang != "" {
			contact.Language = lang
		}

		for _, name := range extra {
			v := value(name)
			if table.IsNull(v) {
				continue
			}
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, &ValidationError{Field: name, Row: i, Reason: "value cannot be converted to text", Err: err}
			}
			if contact.EmbeddedData == nil {
				contact.EmbeddedData = make(map[string]string)
			}
			contact.EmbeddedData[name] = s
		}

		out = append(out, contact)
	}

	return out, nil
}

func cellString(v any) string {
	if table.IsNull(v) {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}
