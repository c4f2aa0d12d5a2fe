package qualtrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSurveys serves the survey listing in pages of the given sizes.
func pagedSurveys(t *testing.T, sizes []int, base *string, hits *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, testToken, r.Header.Get("x-api-token"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		offset := 0
		for i := 0; i < page; i++ {
			offset += sizes[i]
		}

		elements := make([]Survey, sizes[page])
		for i := range elements {
			n := offset + i
			elements[i] = Survey{ID: fmt.Sprintf("SV_%d", n), Name: fmt.Sprintf("Survey %d", n)}
		}

		var next any
		if page+1 < len(sizes) {
			next = fmt.Sprintf("%s/API/v3/surveys?page=%d", *base, page+1)
		}
		writeEnvelope(w, http.StatusOK, okEnvelope(t, map[string]any{"elements": elements, "nextPage": next}))
	})
}

func TestPaginatorPreservesOrderAcrossPages(t *testing.T) {
	sizes := []int{0, 3, 0, 2, 0}
	var base string
	var hits atomic.Int32
	client, server := newServerClient(t, pagedSurveys(t, sizes, &base, &hits))
	base = server.URL

	surveys, err := client.ListSurveys(context.Background())
	require.NoError(t, err)

	require.Len(t, surveys, 5)
	for i, s := range surveys {
		assert.Equal(t, fmt.Sprintf("SV_%d", i), s.ID)
	}
	assert.Equal(t, int32(len(sizes)), hits.Load())
}

func TestPaginatorIteratorStopsEarly(t *testing.T) {
	var base string
	var hits atomic.Int32
	client, server := newServerClient(t, pagedSurveys(t, []int{2, 2, 2}, &base, &hits))
	base = server.URL

	var seen []string
	for s, err := range client.Surveys().All(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, s.ID)
		if len(seen) == 3 {
			break
		}
	}

	assert.Equal(t, []string{"SV_0", "SV_1", "SV_2"}, seen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPaginatorRestartsFromFirstPage(t *testing.T) {
	var base string
	var hits atomic.Int32
	client, server := newServerClient(t, pagedSurveys(t, []int{1, 1}, &base, &hits))
	base = server.URL

	p := client.Surveys()
	first, err := p.Collect(context.Background())
	require.NoError(t, err)
	second, err := p.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(4), hits.Load())
}

func TestPaginatorPartialResult(t *testing.T) {
	var base string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			writeEnvelope(w, http.StatusOK, okEnvelope(t, map[string]any{
				"elements": []MailingList{{ID: "ML_1", Name: "one"}, {ID: "ML_2", Name: "two"}},
				"nextPage": base + "/API/v3/mailinglists?page=1",
			}))
		case "1":
			writeEnvelope(w, http.StatusInternalServerError, errorEnvelope(t, "500 - Internal Server Error", "boom"))
		default:
			t.Errorf("unexpected page request %s", r.URL)
		}
	})
	client, server := newServerClient(t, handler)
	base = server.URL

	lists, err := client.ListMailingLists(context.Background())
	require.Error(t, err)

	var partial *PartialResultError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 2, partial.Fetched)
	assert.Equal(t, 1, partial.Pages)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Message)
	assert.NotNil(t, apiErr.Envelope)

	require.Len(t, lists, 2)
	assert.Equal(t, "ML_2", lists[1].ID)
}

func TestPaginatorFirstPageFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, errorEnvelope(t, "401 - Unauthorized", "bad token"))
	})
	client, _ := newServerClient(t, handler)

	users, err := client.ListUsers(context.Background())
	assert.Empty(t, users)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())

	var partial *PartialResultError
	assert.False(t, errors.As(err, &partial))
}

func TestPaginatorCursorLoop(t *testing.T) {
	var base string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, okEnvelope(t, map[string]any{
			"elements": []User{{ID: "UR_1"}},
			"nextPage": base + "/API/v3/users",
		}))
	})
	client, server := newServerClient(t, handler)
	base = server.URL

	users, err := client.ListUsers(context.Background())
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "revisits")
	assert.Len(t, users, 1)
}

func TestPaginatorTopLevelCursor(t *testing.T) {
	var base string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			fmt.Fprintf(w, `{"meta":{"httpStatus":"200 - OK"},"result":{"elements":[{"id":"UR_1"}]},"nextPage":"%s/API/v3/users?page=1"}`, base)
			return
		}
		fmt.Fprint(w, `{"meta":{"httpStatus":"200 - OK"},"result":{"elements":[{"id":"UR_2"}],"nextPage":""}}`)
	})
	client, server := newServerClient(t, handler)
	base = server.URL

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "UR_2", users[1].ID)
}

func TestPaginatorMissingElements(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"httpStatus":"200 - OK"},"result":{"nextPage":null}}`)
	})
	client, _ := newServerClient(t, handler)

	_, err := client.ListSurveys(context.Background())
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.MethodGet, perr.Method)
}

func TestSurveysTable(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"httpStatus":"200 - OK"},"result":{"elements":[
			{"id":"SV_1","name":"Alpha","isActive":true},
			{"id":"SV_2","name":"Beta","isActive":false,"ownerId":"UR_1"}
		],"nextPage":null}}`)
	})
	client, _ := newServerClient(t, handler)

	tbl, err := client.SurveysTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "isActive", "name", "ownerId"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	owner, _ := tbl.Value(0, "ownerId")
	assert.Nil(t, owner)
}
