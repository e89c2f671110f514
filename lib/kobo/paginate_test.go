package kobo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kobodash/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/kobo")
	t.Cleanup(cleanup)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseURL: server.URL,
		Token:   "test-token",
	})
	require.NoError(t, err)
	return client, server
}

// pagedHandler serves a collection split into pages of the given
// sizes, echoing the platform's count/results/next envelope.
func pagedHandler(t *testing.T, path string, pageSizes []int) http.Handler {
	total := 0
	for _, size := range pageSizes {
		total += size
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Token test-token", r.Header.Get("Authorization"))

		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)

		offset := 0
		for _, size := range pageSizes[:page] {
			offset += size
		}

		results := make([]map[string]any, pageSizes[page])
		for i := range results {
			results[i] = map[string]any{"uid": fmt.Sprintf("rec%d", offset+i)}
		}

		envelope := map[string]any{
			"count":   total,
			"results": results,
		}
		if page < len(pageSizes)-1 {
			envelope["next"] = fmt.Sprintf("http://%s%s?page=%d", r.Host, path, page+1)
		}
		err := json.NewEncoder(w).Encode(envelope)
		require.NoError(t, err)
	})
}

func TestFetchPagesAccumulatesAllPages(t *testing.T) {
	client, _ := newTestClient(t, pagedHandler(t, "/collection/", []int{40, 40, 20}))

	var progress [][2]int
	records, err := client.fetchPages(
		context.Background(), "/collection/?page=0", time.Second*5,
		func(fetched, total int) {
			progress = append(progress, [2]int{fetched, total})
		},
	)
	require.NoError(t, err)
	require.Len(t, records, 100)

	require.Equal(t, [][2]int{{40, 100}, {80, 100}, {100, 100}}, progress)
	for i := 1; i < len(progress); i++ {
		require.Greater(t, progress[i][0], progress[i-1][0])
	}
}

func TestFetchPagesZeroCountShortCircuits(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// next is present but must never be followed when count is 0
		fmt.Fprintf(w, `{"count": 0, "results": [], "next": "http://%s/more"}`, r.Host)
	}))

	records, err := client.fetchPages(context.Background(), "/collection/", time.Second*5, nil)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, 1, requests)
}

func TestFetchPagesSkipsNonObjectEntries(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 4, "results": [{"uid": "a"}, null, 12, {"uid": "b"}]}`)
	}))

	records, err := client.fetchPages(context.Background(), "/collection/", time.Second*5, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestFetchPagesFailureDiscardsPartialResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collection/" {
			fmt.Fprintf(w, `{"count": 2, "results": [{"uid": "a"}], "next": "http://%s/broken"}`, r.Host)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	records, err := client.fetchPages(context.Background(), "/collection/", time.Second*5, nil)
	require.Nil(t, records)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.True(t, strings.HasSuffix(fetchErr.URL, "/broken"))
}

func TestFetchPagesMalformedPageFails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))

	_, err := client.fetchPages(context.Background(), "/collection/", time.Second*5, nil)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseURL: "", Token: "x"})
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient(ClientOptions{BaseURL: "https://example.org", Token: ""})
	require.ErrorIs(t, err, ErrMissingCredentials)
}
