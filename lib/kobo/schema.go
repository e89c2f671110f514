package kobo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"go.opentelemetry.io/otel/codes"
)

// FormDefinition is the deduplicated set of schema terms (question
// names, label strings, type tags) of one form. A Warning marks a form
// whose definition could not be fetched or parsed; its Columns are
// empty but it still occupies its slot in the batch result.
type FormDefinition struct {
	FormName string
	UID      string
	Columns  []string
	Warning  string
}

type assetDetail struct {
	Content json.RawMessage `json:"content"`
}

type formContent struct {
	Survey json.RawMessage `json:"survey"`
}

// FetchFormDefinitions fetches and parses the full form definition of
// every asset given. One bad form never aborts the batch: fetch or
// parse trouble is recorded on that form's Warning and processing
// moves on. The second return value is the sorted union of every term
// seen across the batch.
func (c *Client) FetchFormDefinitions(ctx context.Context, assets []Asset, progress ProgressFunc) ([]FormDefinition, []string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchFormDefinitions")
	defer span.End()

	defs := make([]FormDefinition, 0, len(assets))
	union := make(map[string]struct{})

	for i, asset := range assets {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "batch canceled")
			return nil, nil, err
		}

		def := FormDefinition{FormName: asset.Name, UID: asset.UID}

		terms, err := c.fetchSchemaTerms(ctx, asset.UID)
		if err != nil {
			def.Warning = err.Error()
			slog.WarnContext(ctx, "failed to extract form schema", "form", asset.Name, "uid", asset.UID, "err", err)
		} else {
			def.Columns = terms
			for _, term := range terms {
				union[term] = struct{}{}
			}
		}

		defs = append(defs, def)
		if progress != nil {
			progress(i+1, len(assets))
		}
	}

	allTerms := make([]string, 0, len(union))
	for term := range union {
		allTerms = append(allTerms, term)
	}
	sort.Strings(allTerms)

	return defs, allTerms, nil
}

func (c *Client) fetchSchemaTerms(ctx context.Context, uid string) ([]string, error) {
	detailURL := fmt.Sprintf("/api/v2/assets/%s/?format=json", url.PathEscape(uid))

	reqCtx, cancel := context.WithTimeout(ctx, assetDetailTimeout)
	defer cancel()

	res, err := c.http.R().SetContext(reqCtx).Get(detailURL)
	if err != nil {
		return nil, &FetchError{URL: detailURL, Err: err}
	}
	if res.IsError() {
		return nil, &FetchError{URL: detailURL, Err: fmt.Errorf("unexpected status %q", res.Status())}
	}

	var detail assetDetail
	err = json.Unmarshal(res.Body(), &detail)
	if err != nil {
		return nil, &FetchError{URL: detailURL, Err: err}
	}

	if !isJSONObject(detail.Content) {
		return nil, fmt.Errorf("asset %s has no form content", uid)
	}
	var content formContent
	err = json.Unmarshal(detail.Content, &content)
	if err != nil {
		return nil, fmt.Errorf("asset %s has malformed form content: %w", uid, err)
	}

	var elements []json.RawMessage
	err = json.Unmarshal(content.Survey, &elements)
	if err != nil {
		return nil, fmt.Errorf("asset %s: content.survey is not a question list", uid)
	}

	return collectSchemaTerms(elements), nil
}

// collectSchemaTerms pulls the name, every label and the type tag out
// of each well-formed question element. Non-object elements and empty
// strings are dropped; the result is sorted and deduplicated.
func collectSchemaTerms(elements []json.RawMessage) []string {
	set := make(map[string]struct{})

	for _, raw := range elements {
		var element map[string]any
		if json.Unmarshal(raw, &element) != nil {
			continue
		}

		if name, ok := element["name"]; ok && name != nil {
			set[termString(name)] = struct{}{}
		}
		switch labels := element["label"].(type) {
		case []any:
			for _, label := range labels {
				if label != nil {
					set[termString(label)] = struct{}{}
				}
			}
		case string:
			set[labels] = struct{}{}
		}
		if typ, ok := element["type"]; ok && typ != nil {
			set[termString(typ)] = struct{}{}
		}
	}

	delete(set, "")

	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func termString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// FetchFormFile downloads the binary form definition (xls) of one
// asset.
func (c *Client) FetchFormFile(ctx context.Context, uid string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:FetchFormFile")
	defer span.End()

	fileURL := fmt.Sprintf("/api/v2/assets/%s.xls", url.PathEscape(uid))

	reqCtx, cancel := context.WithTimeout(ctx, formFileTimeout)
	defer cancel()

	res, err := c.http.R().SetContext(reqCtx).Get(fileURL)
	if err != nil {
		span.SetStatus(codes.Error, "form file request failed")
		return nil, &FetchError{URL: fileURL, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "form file request failed")
		return nil, &FetchError{URL: fileURL, Err: fmt.Errorf("unexpected status %q", res.Status())}
	}
	return res.Body(), nil
}
