package qualtrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantErr    bool
		wantResult string
	}{
		{
			name:       "success",
			body:       `{"meta":{"httpStatus":"200 - OK","requestId":"r1"},"result":{"id":"SV_1"}}`,
			wantOK:     true,
			wantResult: `{"id":"SV_1"}`,
		},
		{
			name:   "domain failure keeps body",
			body:   `{"meta":{"httpStatus":"400 - Bad Request","error":{"errorMessage":"bad","errorCode":"Q_400"}}}`,
			wantOK: false,
		},
		{
			name:   "status must match exactly",
			body:   `{"meta":{"httpStatus":"200 - ok"},"result":{}}`,
			wantOK: false,
		},
		{
			name:    "not json",
			body:    `<html>gateway timeout</html>`,
			wantErr: true,
		},
		{
			name:    "missing meta",
			body:    `{"result":{"id":"SV_1"}}`,
			wantErr: true,
		},
		{
			name:    "missing httpStatus",
			body:    `{"meta":{"requestId":"r1"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := decodeEnvelope([]byte(tt.body))
			if tt.wantErr {
				var perr *ProtocolError
				require.True(t, errors.As(err, &perr), "want ProtocolError, got %v", err)
				assert.Nil(t, env)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, env.OK())
			if tt.wantResult != "" {
				assert.JSONEq(t, tt.wantResult, string(env.Result))
			}
		})
	}
}

func TestEnvelopeAPIError(t *testing.T) {
	env, err := decodeEnvelope([]byte(`{"meta":{"httpStatus":"404 - Not Found","requestId":"r9","error":{"errorMessage":"survey not found","errorCode":"QVAL_1"}}}`))
	require.NoError(t, err)

	apiErr := env.apiError(404)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsUnauthorized())
	assert.Equal(t, "r9", apiErr.RequestID)
	assert.Same(t, env, apiErr.Envelope)
	assert.Contains(t, apiErr.Error(), "survey not found")
	assert.Contains(t, apiErr.Error(), "QVAL_1")
}

func TestDecodeResult(t *testing.T) {
	env := &Envelope{Result: []byte(`{"id":"ML_1"}`)}
	res, err := decodeResult[idResult](env)
	require.NoError(t, err)
	assert.Equal(t, "ML_1", res.ID)

	_, err = decodeResult[idResult](&Envelope{})
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)

	_, err = decodeResult[idResult](&Envelope{Result: []byte(`[1,2]`)})
	assert.ErrorAs(t, err, &perr)
}
