package kobo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// ProgressFunc reports (fetched, total) after every page. total is -1
// when the server did not include a count.
type ProgressFunc func(fetched, total int)

// every paged endpoint responds with the same envelope
type pageEnvelope struct {
	Count   *int              `json:"count"`
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// fetchPages walks a cursor-paginated collection starting at startURL,
// following the `next` link until it is absent. A count of zero on the
// first page short-circuits without further requests. Any page failure
// aborts the whole fetch with a *FetchError; pages accumulated before
// the failure are thrown away rather than returned partially.
//
// Entries that are not JSON objects are skipped with a warning.
func (c *Client) fetchPages(ctx context.Context, startURL string, pageTimeout time.Duration, progress ProgressFunc) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "client:fetchPages")
	defer span.End()

	var records []json.RawMessage
	total := -1

	nextURL := startURL
	for nextURL != "" {
		pageCtx, cancel := context.WithTimeout(ctx, pageTimeout)
		res, err := c.http.R().SetContext(pageCtx).Get(nextURL)
		cancel()
		if err != nil {
			span.SetStatus(codes.Error, "page request failed")
			return nil, &FetchError{URL: nextURL, Err: err}
		}
		if res.IsError() {
			span.SetStatus(codes.Error, "page request failed")
			return nil, &FetchError{URL: nextURL, Err: fmt.Errorf("unexpected status %q", res.Status())}
		}

		var page pageEnvelope
		err = json.Unmarshal(res.Body(), &page)
		if err != nil {
			span.SetStatus(codes.Error, "malformed page")
			return nil, &FetchError{URL: nextURL, Err: err}
		}

		if total == -1 && page.Count != nil {
			total = *page.Count
			if total == 0 {
				return nil, nil
			}
		}

		for _, entry := range page.Results {
			if !isJSONObject(entry) {
				slog.WarnContext(ctx, "skipping non-object collection entry", "url", nextURL, "entry", string(entry))
				continue
			}
			records = append(records, entry)
		}

		if progress != nil {
			progress(len(records), total)
		}

		nextURL = ""
		if page.Next != nil {
			nextURL = *page.Next
		}
	}

	return records, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
