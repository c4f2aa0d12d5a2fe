package qualtrics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StatusOK is the meta.httpStatus value of a successful envelope.
const StatusOK = "200 - OK"

// Envelope is the wrapper every JSON response from the platform is
// delivered in.
type Envelope struct {
	Meta     Meta            `json:"meta"`
	Result   json.RawMessage `json:"result,omitempty"`
	NextPage *string         `json:"nextPage,omitempty"`
}

// Meta carries the platform's status for a response.
type Meta struct {
	HTTPStatus string       `json:"httpStatus"`
	RequestID  string       `json:"requestId,omitempty"`
	Notice     string       `json:"notice,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the meta.error object of a failed envelope.
type ErrorDetail struct {
	Message string `json:"errorMessage"`
	Code    string `json:"errorCode"`
}

// OK reports whether meta.httpStatus is exactly "200 - OK".
func (e *Envelope) OK() bool {
	return e.Meta.HTTPStatus == StatusOK
}

func (e *Envelope) apiError(statusCode int) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Status:     e.Meta.HTTPStatus,
		RequestID:  e.Meta.RequestID,
		Envelope:   e,
	}
	if e.Meta.Error != nil {
		apiErr.Message = e.Meta.Error.Message
		apiErr.ErrorCode = e.Meta.Error.Code
	}
	return apiErr
}

// decodeEnvelope parses a response body. It fails with a ProtocolError when
// the body is not JSON or carries no meta.httpStatus.
func decodeEnvelope(body []byte) (*Envelope, error) {
	var raw struct {
		Meta *struct {
			HTTPStatus *string `json:"httpStatus"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ProtocolError{Reason: "response body is not JSON", Body: snippet(body), Err: err}
	}
	if raw.Meta == nil || raw.Meta.HTTPStatus == nil {
		return nil, &ProtocolError{Reason: "response has no meta.httpStatus", Body: snippet(body)}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ProtocolError{Reason: "malformed envelope", Body: snippet(body), Err: err}
	}
	return &env, nil
}

// decodeResult unmarshals the envelope's result into T.
func decodeResult[T any](env *Envelope) (T, error) {
	var out T
	if len(env.Result) == 0 || bytes.Equal(env.Result, []byte("null")) {
		return out, &ProtocolError{Reason: "response has no result"}
	}
	if err := json.Unmarshal(env.Result, &out); err != nil {
		return out, &ProtocolError{Reason: fmt.Sprintf("unexpected result shape for %T", out), Body: snippet(env.Result), Err: err}
	}
	return out, nil
}

// idResult is the result of mutations that create a resource.
type idResult struct {
	ID string `json:"id"`
}

// listPage is the result of listing endpoints.
type listPage[T any] struct {
	Elements *[]T    `json:"elements"`
	NextPage *string `json:"nextPage"`
}

const maxSnippet = 512

func snippet(body []byte) string {
	if len(body) > maxSnippet {
		return string(body[:maxSnippet]) + "..."
	}
	return string(body)
}
