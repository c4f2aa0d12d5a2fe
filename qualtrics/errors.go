package qualtrics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors
var (
	// ErrNotFound indicates a name search matched nothing
	ErrNotFound = errors.New("no matching resource found")
	// ErrNotImplemented is returned by operations the platform wrapper does not support
	ErrNotImplemented = errors.New("operation not implemented")
	// ErrTimeout indicates the export deadline elapsed before the export finished
	ErrTimeout = errors.New("export timed out")
	// ErrAmbiguousArchive indicates an export archive with more than one entry
	ErrAmbiguousArchive = errors.New("export archive contains more than one file")
	// ErrInvalidArchive indicates the export download was not a readable archive
	ErrInvalidArchive = errors.New("export download is not a valid archive")
	// ErrUnsupportedFormat indicates an export format that cannot be decoded into a table
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrMissingEmail indicates a contact row without an email
	ErrMissingEmail = errors.New("contact email is required")
)

// ProtocolError represents a response that does not follow the envelope
// convention: a body that is not JSON, a missing meta.httpStatus, or a
// malformed result.
type ProtocolError struct {
	Method     string
	URL        string
	StatusCode int
	Reason     string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	var b strings.Builder
	b.WriteString("qualtrics protocol error")
	if e.Method != "" {
		fmt.Fprintf(&b, ": %s %s", e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// APIError represents an envelope whose meta.httpStatus is not "200 - OK".
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	ErrorCode  string
	RequestID  string
	Envelope   *Envelope
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := fmt.Sprintf("qualtrics API error: %s", e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.ErrorCode != "" {
		msg += " (" + e.ErrorCode + ")"
	}
	return msg
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsBadRequest checks if the platform rejected the request parameters
func (e *APIError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

// PartialResultError is returned by pagination when a page after the first
// failed. The elements fetched before the failure are returned alongside it.
type PartialResultError struct {
	Fetched int
	Pages   int
	Err     error
}

func (e *PartialResultError) Error() string {
	return fmt.Sprintf("pagination stopped after %d pages (%d elements): %v", e.Pages, e.Fetched, e.Err)
}

func (e *PartialResultError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid input detected before any request is sent.
// Row is the zero-based input row for contact batches, -1 otherwise.
type ValidationError struct {
	Field  string
	Row    int
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid input")
	if e.Row >= 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Candidate is one resource matched by a name search.
type Candidate struct {
	ID   string
	Name string
}

// AmbiguousMatchError is returned when a name search matches more than one resource.
type AmbiguousMatchError struct {
	Kind       string
	Search     string
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.ID)
	}
	return fmt.Sprintf("%d %s match %q: %s", len(e.Candidates), e.Kind, e.Search, strings.Join(names, ", "))
}

// ExportFailedError is returned when the platform reports a failed export.
type ExportFailedError struct {
	SurveyID   string
	ProgressID string
	Status     string
}

func (e *ExportFailedError) Error() string {
	return fmt.Sprintf("export %s for survey %s finished with status %q", e.ProgressID, e.SurveyID, e.Status)
}

// TimeoutError is returned when the export context expires while polling.
type TimeoutError struct {
	ProgressID string
	Polls      int
	Err        error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("export %s timed out after %d polls: %v", e.ProgressID, e.Polls, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Is reports TimeoutError as ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ContactImportError is returned by CreateMailingList when the list was
// created but the contact import did not start.
type ContactImportError struct {
	MailingListID string
	ImportID      string
	Err           error
}

func (e *ContactImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mailing list %s created but contact import failed: %v", e.MailingListID, e.Err)
	}
	return fmt.Sprintf("mailing list %s created but contact import returned unexpected id %q", e.MailingListID, e.ImportID)
}

func (e *ContactImportError) Unwrap() error {
	return e.Err
}
