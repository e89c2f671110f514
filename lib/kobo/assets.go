package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

type Status string

const (
	StatusDraft    Status = "Draft"
	StatusDeployed Status = "Deployed"
	StatusArchived Status = "Archived"
)

// Asset is one normalized form/survey row. Rows are immutable after
// normalization and replaced wholesale on every fetch.
type Asset struct {
	Name            string
	UID             string
	SubmissionCount int
	DateCreated     *time.Time
	DateModified    *time.Time
	CountryLabel    string
	CountryCode     string
	SourceViewID    string
	SourceViewName  string
	IsDeployed      bool
	IsArchived      bool
	Status          Status
	OwnerUsername   string

	// settings values that may be a choice object, a plain string or
	// absent; display normalization happens at filter/export time
	Sector             any
	OperationalPurpose any
	CollectsPII        any
	Description        string
}

// SectorDisplay renders the raw sector value the way the platform UI
// does: a choice object renders as its label (or name, or raw string
// form), a non-empty string as-is, anything else as "".
func (a Asset) SectorDisplay() string {
	return DisplayString(a.Sector)
}

// DisplayString renders a settings value that may be a choice object
// (name/label), a plain string or absent.
func DisplayString(v any) string {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return ""
		}
		if s, ok := val["name"].(string); ok && s != "" {
			return s
		}
		if s, ok := val["label"].(string); ok && s != "" {
			return s
		}
		return fmt.Sprintf("%v", val)
	case string:
		return val
	default:
		return ""
	}
}

// RawAsset is the platform's asset record, decoded at this boundary so
// untyped JSON never leaks further in.
type RawAsset struct {
	Name             string           `json:"name"`
	UID              string           `json:"uid"`
	AssetType        string           `json:"asset_type"`
	SubmissionCount  int              `json:"deployment__submission_count"`
	DateCreated      string           `json:"date_created"`
	DateModified     string           `json:"date_modified"`
	DeploymentStatus string           `json:"deployment_status"`
	IsDeployed       bool             `json:"is_deployed"`
	IsArchived       bool             `json:"is_archived"`
	OwnerUsername    string           `json:"owner__username"`
	Settings         RawAssetSettings `json:"settings"`
}

type RawAssetSettings struct {
	Country            []RawCountry `json:"country"`
	Sector             any          `json:"sector"`
	OperationalPurpose any          `json:"operational_purpose"`
	CollectsPII        any          `json:"collects_pii"`
	Description        string       `json:"description"`
}

type RawCountry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NormalizeAsset maps a raw record onto a fixed-shape row. Absent raw
// fields become zero values, never an error.
func NormalizeAsset(raw RawAsset, sourceViewID, sourceViewName string) Asset {
	asset := Asset{
		Name:               raw.Name,
		UID:                raw.UID,
		SubmissionCount:    raw.SubmissionCount,
		DateCreated:        parseTimestamp(raw.DateCreated),
		DateModified:       parseTimestamp(raw.DateModified),
		SourceViewID:       sourceViewID,
		SourceViewName:     sourceViewName,
		IsDeployed:         raw.IsDeployed,
		IsArchived:         raw.IsArchived,
		OwnerUsername:      raw.OwnerUsername,
		Sector:             raw.Settings.Sector,
		OperationalPurpose: raw.Settings.OperationalPurpose,
		CollectsPII:        raw.Settings.CollectsPII,
		Description:        raw.Settings.Description,
	}

	// only the first country entry is honored
	if len(raw.Settings.Country) > 0 {
		asset.CountryLabel = raw.Settings.Country[0].Label
		asset.CountryCode = raw.Settings.Country[0].Value
	}

	// the deployment check takes precedence over the archived flag
	switch {
	case raw.DeploymentStatus == "deployed":
		asset.Status = StatusDeployed
	case raw.IsArchived:
		asset.Status = StatusArchived
	default:
		asset.Status = StatusDraft
	}

	return asset
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		slog.Warn("failed to parse asset timestamp", "time", s, "err", err)
		return nil
	}
	return &t
}

// FetchViewAssets loads the assets of a single project view. With
// surveysOnly set, records whose asset_type is not "survey" are
// dropped before normalization.
func (c *Client) FetchViewAssets(ctx context.Context, viewUID, viewName string, surveysOnly bool, progress ProgressFunc) ([]Asset, error) {
	ctx, span := tracer.Start(ctx, "client:FetchViewAssets")
	defer span.End()

	startURL := fmt.Sprintf("/api/v2/project-views/%s/assets/?format=json", url.PathEscape(viewUID))
	records, err := c.fetchPages(ctx, startURL, viewAssetTimeout, progress)
	if err != nil {
		return nil, err
	}
	return c.normalizeRecords(ctx, records, viewUID, viewName, surveysOnly), nil
}

// FetchAllAssets loads every asset the token can see, straight from
// the assets endpoint without any project view scoping.
func (c *Client) FetchAllAssets(ctx context.Context, surveysOnly bool, progress ProgressFunc) ([]Asset, error) {
	ctx, span := tracer.Start(ctx, "client:FetchAllAssets")
	defer span.End()

	records, err := c.fetchPages(ctx, "/api/v2/assets/?format=json", assetListTimeout, progress)
	if err != nil {
		return nil, err
	}
	return c.normalizeRecords(ctx, records, "N/A", "Direct Assets API", surveysOnly), nil
}

func (c *Client) normalizeRecords(ctx context.Context, records []json.RawMessage, sourceViewID, sourceViewName string, surveysOnly bool) []Asset {
	var assets []Asset
	for _, record := range records {
		var raw RawAsset
		err := json.Unmarshal(record, &raw)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed asset record", "source_view", sourceViewID, "err", err)
			continue
		}
		if surveysOnly && raw.AssetType != "survey" {
			continue
		}
		assets = append(assets, NormalizeAsset(raw, sourceViewID, sourceViewName))
	}
	return assets
}
