package kobo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchSubmissionsFlattensAndMemoizes(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "/api/v2/assets/s1/data/", r.URL.Path)
		fmt.Fprint(w, `{"count": 2, "results": [
			{"_id": 1, "group": {"age": 31}},
			{"_id": 2, "group": {"age": 58}}
		]}`)
	}))

	rows, err := client.FetchSubmissions(context.Background(), "s1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, float64(31), rows[0]["group.age"])

	// identical input is served from the cache, not re-fetched
	again, err := client.FetchSubmissions(context.Background(), "s1", nil)
	require.NoError(t, err)
	require.Equal(t, rows, again)
	require.Equal(t, 1, requests)

	// invalidation is explicit
	client.ClearCache()
	_, err = client.FetchSubmissions(context.Background(), "s1", nil)
	require.NoError(t, err)
	require.Equal(t, 2, requests)
}

func TestFetchSubmissionsEmptyIsNotAFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 0, "results": []}`)
	}))

	_, err := client.FetchSubmissions(context.Background(), "s1", nil)
	require.ErrorIs(t, err, ErrNoSubmissions)

	var fetchErr *FetchError
	require.False(t, errors.As(err, &fetchErr))
}

func TestFetchSubmissionsFailureIsNotCached(t *testing.T) {
	healthy := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"count": 1, "results": [{"_id": 1}]}`)
	}))

	_, err := client.FetchSubmissions(context.Background(), "s1", nil)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)

	healthy = true
	rows, err := client.FetchSubmissions(context.Background(), "s1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
