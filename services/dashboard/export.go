package dashboard

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"kobodash/lib/kobo"

	"github.com/xuri/excelize/v2"
)

var metadataColumns = []string{
	"Name", "UID", "Status", "Submission Count",
	"Date Created", "Date Modified", "Country Label", "Country Code",
	"Sector", "Source View UID", "Source View Name", "Owner Username",
}

// WriteMetadataXLSX writes one spreadsheet row per asset with every
// normalized column. Timestamps are rendered without an offset for
// spreadsheet compatibility.
func WriteMetadataXLSX(w io.Writer, assets []kobo.Asset) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	header := make([]any, len(metadataColumns))
	for i, col := range metadataColumns {
		header[i] = col
	}
	err := f.SetSheetRow(sheet, "A1", &header)
	if err != nil {
		return err
	}

	for i, asset := range assets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			asset.Name,
			asset.UID,
			string(asset.Status),
			asset.SubmissionCount,
			naiveTimestamp(asset.DateCreated),
			naiveTimestamp(asset.DateModified),
			asset.CountryLabel,
			asset.CountryCode,
			asset.SectorDisplay(),
			asset.SourceViewID,
			asset.SourceViewName,
			asset.OwnerUsername,
		}
		err = f.SetSheetRow(sheet, cell, &row)
		if err != nil {
			return err
		}
	}

	return f.Write(w)
}

func naiveTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// WriteFormFilesZip packs the binary form definition of every asset
// into a zip, one `<name>_<uid>.xls` entry each. A form whose file
// cannot be fetched is skipped with a warning; the archive still
// contains all the others.
func (s *Service) WriteFormFilesZip(ctx context.Context, w io.Writer, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:WriteFormFilesZip")
	defer span.End()

	archive := zip.NewWriter(w)
	for i, asset := range s.Filtered {
		if err := ctx.Err(); err != nil {
			return err
		}

		contents, err := s.client.FetchFormFile(ctx, asset.UID)
		if err != nil {
			slog.WarnContext(ctx, "skipping form file", "form", asset.Name, "uid", asset.UID, "err", err)
			continue
		}

		name := fmt.Sprintf("%s_%s.xls", sanitizeFilename(asset.Name), asset.UID)
		entry, err := archive.Create(name)
		if err != nil {
			return err
		}
		_, err = entry.Write(contents)
		if err != nil {
			return err
		}

		if progress != nil {
			progress(i+1, len(s.Filtered))
		}
	}
	return archive.Close()
}

// WriteSubmissionsZip packs the flattened submission rows of every
// asset into a zip, one `<name>_<uid>_submissions.json` entry each
// holding an array of row objects. Forms without submissions are
// skipped, as are forms whose data cannot be fetched.
func (s *Service) WriteSubmissionsZip(ctx context.Context, w io.Writer, progress kobo.ProgressFunc) error {
	ctx, span := tracer.Start(ctx, "service:WriteSubmissionsZip")
	defer span.End()

	archive := zip.NewWriter(w)
	for i, asset := range s.Filtered {
		if err := ctx.Err(); err != nil {
			return err
		}

		rows, err := s.client.FetchSubmissions(ctx, asset.UID, nil)
		if errors.Is(err, kobo.ErrNoSubmissions) {
			slog.InfoContext(ctx, "no submissions, skipping", "form", asset.Name, "uid", asset.UID)
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "skipping submission data", "form", asset.Name, "uid", asset.UID, "err", err)
			continue
		}

		contents, err := json.MarshalIndent(rows, "", "    ")
		if err != nil {
			return err
		}

		name := fmt.Sprintf("%s_%s_submissions.json", sanitizeFilename(asset.Name), asset.UID)
		entry, err := archive.Create(name)
		if err != nil {
			return err
		}
		_, err = entry.Write(contents)
		if err != nil {
			return err
		}

		if progress != nil {
			progress(i+1, len(s.Filtered))
		}
	}
	return archive.Close()
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

func sanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}
