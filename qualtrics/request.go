package qualtrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Header names exactly as the platform endpoints expect them. Some
// endpoints take the lowercase token header, others the uppercase one.
const (
	headerTokenLower      = "x-api-token"
	headerTokenUpper      = "X-API-TOKEN"
	headerContentTypeCaps = "CONTENT-TYPE"
	headerContentType     = "Content-Type"
	headerCopySource      = "X-COPY-SOURCE"
	headerCopyOwner       = "X-COPY-DESTINATION-OWNER"

	contentTypeJSON = "application/json"
)

// HeaderField is a single request header. Name is sent as written.
type HeaderField struct {
	Name  string
	Value string
}

// Request is a fully built platform call.
type Request struct {
	Method string
	URL    string
	Header []HeaderField
	Body   any
}

// HeaderValue returns the value of the first header named exactly name.
func (r *Request) HeaderValue(name string) (string, bool) {
	for _, h := range r.Header {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// Response is the raw transport result.
type Response struct {
	StatusCode int
	Body       []byte
}

// Doer executes requests. The default implementation is backed by resty.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// authStyle selects one of the header sets endpoints authenticate with.
type authStyle int

const (
	// x-api-token
	authLower authStyle = iota
	// X-API-TOKEN with CONTENT-TYPE: application/json
	authUpperJSON
	// X-API-TOKEN
	authUpper
)

func (c *Client) newRequest(method, rawURL string, auth authStyle, body any) *Request {
	req := &Request{Method: method, URL: rawURL, Body: body}
	switch auth {
	case authLower:
		req.Header = []HeaderField{{Name: headerTokenLower, Value: c.cfg.APIToken}}
	case authUpperJSON:
		req.Header = []HeaderField{
			{Name: headerContentTypeCaps, Value: contentTypeJSON},
			{Name: headerTokenUpper, Value: c.cfg.APIToken},
		}
	case authUpper:
		req.Header = []HeaderField{{Name: headerTokenUpper, Value: c.cfg.APIToken}}
	}
	return req
}

// endpoint joins escaped path segments onto the API base URL.
func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// restyDoer is the default transport.
type restyDoer struct {
	client *resty.Client
}

func newRestyDoer(client *resty.Client) *restyDoer {
	return &restyDoer{client: client}
}

func (d *restyDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	r := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	hasContentType := false
	for _, h := range req.Header {
		if strings.EqualFold(h.Name, headerContentType) {
			hasContentType = true
			r.SetHeader(headerContentType, h.Value)
			continue
		}
		r.SetHeaderVerbatim(h.Name, h.Value)
	}

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		if !hasContentType {
			r.SetHeader(headerContentType, contentTypeJSON)
		}
		r.SetBody(payload)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	raw := resp.RawBody()
	if raw == nil {
		return &Response{StatusCode: resp.StatusCode()}, nil
	}
	defer raw.Close()

	body, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode(), Body: body}, nil
}

// send executes req and returns the raw response.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Msg("Making Qualtrics API request")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Msg("Qualtrics API response")

	return resp, nil
}

// call executes req and decodes the envelope. A decoded envelope that is
// not OK is returned together with an *APIError.
func (c *Client) call(ctx context.Context, req *Request) (*Envelope, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) {
			perr.Method = req.Method
			perr.URL = req.URL
			perr.StatusCode = resp.StatusCode
		}
		return nil, err
	}

	if !env.OK() {
		apiErr := env.apiError(resp.StatusCode)
		c.logger.Debug().
			Str("request_id", env.Meta.RequestID).
			Str("status", env.Meta.HTTPStatus).
			Str("error", apiErr.Message).
			Msg("Qualtrics request failed")
		return env, apiErr
	}

	return env, nil
}

// callResult executes req and decodes its result as T.
func callResult[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var zero T
	env, err := c.call(ctx, req)
	if err != nil {
		return zero, err
	}
	out, err := decodeResult[T](env)
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) {
			perr.Method = req.Method
			perr.URL = req.URL
		}
		return zero, err
	}
	return out, nil
}

// callID executes a mutation that returns the new resource id.
func (c *Client) callID(ctx context.Context, req *Request) (string, error) {
	res, err := callResult[idResult](ctx, c, req)
	if err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", &ProtocolError{Method: req.Method, URL: req.URL, Reason: "result has no id"}
	}
	return res.ID, nil
}

// callNoResult executes a mutation whose result is not used.
func (c *Client) callNoResult(ctx context.Context, req *Request) error {
	_, err := c.call(ctx, req)
	return err
}

var _ Doer = (*restyDoer)(nil)
