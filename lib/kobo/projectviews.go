package kobo

import (
	"context"
	"encoding/json"
	"log/slog"
)

// ProjectView is a named, server-defined grouping of assets.
type ProjectView struct {
	Name string
	UID  string
	URL  string
}

type rawProjectView struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	URL  string `json:"url"`
}

func (c *Client) FetchProjectViews(ctx context.Context, progress ProgressFunc) ([]ProjectView, error) {
	ctx, span := tracer.Start(ctx, "client:FetchProjectViews")
	defer span.End()

	records, err := c.fetchPages(ctx, "/api/v2/project-views/?format=json", projectViewTimeout, progress)
	if err != nil {
		return nil, err
	}

	var views []ProjectView
	for _, record := range records {
		var raw rawProjectView
		err := json.Unmarshal(record, &raw)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed project view", "err", err)
			continue
		}
		views = append(views, ProjectView{
			Name: raw.Name,
			UID:  raw.UID,
			URL:  raw.URL,
		})
	}
	return views, nil
}
