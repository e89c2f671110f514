package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

// FetchSubmissions pages through a form's raw submission records and
// returns them flattened. Zero submissions yields ErrNoSubmissions.
//
// Results are memoized per (server, uid) until ClearCache is called,
// so re-exporting the same form does not hit the API again. Callers
// must not mutate the returned rows.
func (c *Client) FetchSubmissions(ctx context.Context, uid string, progress ProgressFunc) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:FetchSubmissions")
	defer span.End()

	cacheKey := c.BaseURL + "\x00" + uid
	if rows, hit := c.submissions.Get(cacheKey); hit {
		slog.DebugContext(ctx, "serving submissions from cache", "uid", uid)
		return rows, nil
	}

	startURL := fmt.Sprintf("/api/v2/assets/%s/data/?format=json", url.PathEscape(uid))
	records, err := c.fetchPages(ctx, startURL, submissionTimeout, progress)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoSubmissions
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		var submission map[string]any
		err := json.Unmarshal(record, &submission)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed submission", "uid", uid, "err", err)
			continue
		}
		rows = append(rows, Flatten(submission))
	}
	if len(rows) == 0 {
		return nil, ErrNoSubmissions
	}

	c.submissions.Add(cacheKey, rows)
	return rows, nil
}
