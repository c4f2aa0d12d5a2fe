package qualtrics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// okEnvelope renders a successful envelope around result.
func okEnvelope(t *testing.T, result any) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"meta":   map[string]any{"httpStatus": StatusOK, "requestId": "req-ok"},
		"result": result,
	})
	require.NoError(t, err)
	return body
}

func errorEnvelope(t *testing.T, status, message string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"meta": map[string]any{
			"httpStatus": status,
			"requestId":  "req-err",
			"error":      map[string]any{"errorMessage": message, "errorCode": "Q_1"},
		},
	})
	require.NoError(t, err)
	return body
}

func writeEnvelope(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// newServerClient starts an httptest server and a client pointed at it.
func newServerClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL + "/API/v3"), WithLogger(zerolog.Nop())}, opts...)
	client, err := New(Config{
		APIToken:            testToken,
		DefaultSurveyOwner:  "UR_owner",
		DefaultLibraryOwner: "UR_library",
	}, opts...)
	require.NoError(t, err)
	return client, server
}

// recordingDoer captures requests and answers each with respond.
type recordingDoer struct {
	mu       sync.Mutex
	requests []*Request
	respond  func(*Request) *Response
}

func (d *recordingDoer) Do(_ context.Context, req *Request) (*Response, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()
	return d.respond(req), nil
}

func (d *recordingDoer) last() *Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return nil
	}
	return d.requests[len(d.requests)-1]
}

func newRecordingClient(t *testing.T, respond func(*Request) *Response, opts ...Option) (*Client, *recordingDoer) {
	t.Helper()
	doer := &recordingDoer{respond: respond}
	opts = append([]Option{WithDoer(doer), WithLogger(zerolog.Nop())}, opts...)
	client, err := New(Config{
		DataCenter:          "ca1",
		APIToken:            testToken,
		DefaultSurveyOwner:  "UR_owner",
		DefaultLibraryOwner: "UR_library",
	}, opts...)
	require.NoError(t, err)
	return client, doer
}

// zipArchive builds an in-memory zip with the given entries.
func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
