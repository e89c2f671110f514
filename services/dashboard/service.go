package dashboard

import (
	"context"
	"log/slog"

	"kobodash/lib/kobo"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/dashboard")

// Service holds one analyst session. Every Load* call replaces the
// working tables wholesale; nothing is merged incrementally and
// nothing survives the session.
type Service struct {
	client *kobo.Client

	// results of the last fetch/filter/analyze/search actions
	ProjectViews []kobo.ProjectView
	Assets       []kobo.Asset
	Filtered     []kobo.Asset
	FormDefs     []kobo.FormDefinition
	AllTerms     []string
	Matches      []MatchResult
}

func NewService(client *kobo.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Client() *kobo.Client {
	return s.client
}

// LoadProjectViews replaces the list of available project views.
func (s *Service) LoadProjectViews(ctx context.Context, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:LoadProjectViews")
	defer span.End()

	views, err := s.client.FetchProjectViews(ctx, progress)
	if err != nil {
		return err
	}
	s.ProjectViews = views
	return nil
}

// LoadAssetsFromViews replaces the working asset table with the assets
// of the selected project views. A view that fails to fetch is skipped
// with a warning rather than aborting the other views; the failed
// view's rows are not partially included.
func (s *Service) LoadAssetsFromViews(ctx context.Context, viewUIDs []string, surveysOnly bool, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:LoadAssetsFromViews")
	defer span.End()

	var loaded []kobo.Asset
	for _, uid := range viewUIDs {
		assets, err := s.client.FetchViewAssets(ctx, uid, s.viewName(uid), surveysOnly, progress)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.WarnContext(ctx, "could not fetch assets for project view, skipping", "view", uid, "err", err)
			continue
		}
		loaded = append(loaded, assets...)
	}

	s.replaceAssets(loaded)
	return nil
}

// LoadAllAssets replaces the working asset table from the direct
// assets endpoint, without project view scoping.
func (s *Service) LoadAllAssets(ctx context.Context, surveysOnly bool, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:LoadAllAssets")
	defer span.End()

	assets, err := s.client.FetchAllAssets(ctx, surveysOnly, progress)
	if err != nil {
		return err
	}
	s.replaceAssets(assets)
	return nil
}

func (s *Service) replaceAssets(assets []kobo.Asset) {
	s.Assets = DedupeAssets(assets)
	s.Filtered = s.Assets
}

func (s *Service) viewName(uid string) string {
	for _, view := range s.ProjectViews {
		if view.UID == uid {
			return view.Name
		}
	}
	return "Unknown"
}

// Filter recomputes the filtered view from the working table.
func (s *Service) Filter(criteria Criteria) []kobo.Asset {
	s.Filtered = ApplyFilters(s.Assets, criteria)
	return s.Filtered
}

// AnalyzeForms extracts schema terms for every currently filtered
// asset, replacing previous analysis results. Per-form trouble is
// recorded on the form definitions, not returned as an error.
func (s *Service) AnalyzeForms(ctx context.Context, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:AnalyzeForms")
	defer span.End()

	s.FormDefs = nil
	s.AllTerms = nil
	s.Matches = nil

	defs, terms, err := s.client.FetchFormDefinitions(ctx, s.Filtered, progress)
	if err != nil {
		return err
	}
	s.FormDefs = defs
	s.AllTerms = terms
	return nil
}

// Search runs the fuzzy keyword matcher over the analyzed form
// definitions and remembers the results.
func (s *Service) Search(keywords []string, method MatchMethod, threshold int) []MatchResult {
	owners := make(map[string]string, len(s.Assets))
	for _, asset := range s.Assets {
		owners[asset.UID] = asset.OwnerUsername
	}
	s.Matches = SearchSchemaTerms(s.FormDefs, owners, keywords, method, threshold)
	return s.Matches
}

// Summary reports the headline stats of the filtered view.
func (s *Service) Summary() (projects, totalSubmissions int) {
	for _, asset := range s.Filtered {
		totalSubmissions += asset.SubmissionCount
	}
	return len(s.Filtered), totalSubmissions
}
