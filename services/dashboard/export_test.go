package dashboard

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"kobodash/lib/kobo"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`Water/Sanitation: Baseline?`, "Water_Sanitation_ Baseline_"},
		{`a\b*c"d<e>f|g`, "a_b_c_d_e_f_g"},
		{"Plain Name", "Plain Name"},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, sanitizeFilename(c.in))
	}
}

func TestWriteMetadataXLSX(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	assets := []kobo.Asset{
		{
			Name:            "Household Survey",
			UID:             "a1",
			Status:          kobo.StatusDeployed,
			SubmissionCount: 42,
			DateCreated:     &created,
			CountryLabel:    "Kenya",
			CountryCode:     "KEN",
			Sector:          map[string]any{"label": "Health"},
			OwnerUsername:   "alice",
		},
		{Name: "Draft Form", UID: "a2", Status: kobo.StatusDraft},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMetadataXLSX(&buf, assets))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, metadataColumns, rows[0])

	require.Equal(t, "Household Survey", rows[1][0])
	require.Equal(t, "a1", rows[1][1])
	require.Equal(t, "Deployed", rows[1][2])
	require.Equal(t, "42", rows[1][3])
	require.Equal(t, "2024-03-01 09:30:00", rows[1][4])
	require.Equal(t, "Health", rows[1][8])

	// nil timestamps render as blanks, not zero dates
	require.Equal(t, "a2", rows[2][1])
	if len(rows[2]) > 4 {
		require.Equal(t, "", rows[2][4])
	}
}

func TestWriteFormFilesZipSkipsFailures(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/assets/a1.xls":
			fmt.Fprint(w, "xls-bytes-a1")
		case "/api/v2/assets/a2.xls":
			http.Error(w, "gone", http.StatusNotFound)
		default:
			http.NotFound(w, r)
		}
	}))
	svc.Filtered = []kobo.Asset{
		{Name: "Water: Baseline", UID: "a1"},
		{Name: "Missing", UID: "a2"},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteFormFilesZip(context.Background(), &buf, nil))

	archive, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, archive.File, 1)
	require.Equal(t, "Water_ Baseline_a1.xls", archive.File[0].Name)

	entry, err := archive.File[0].Open()
	require.NoError(t, err)
	defer entry.Close()
	var contents bytes.Buffer
	_, err = contents.ReadFrom(entry)
	require.NoError(t, err)
	require.Equal(t, "xls-bytes-a1", contents.String())
}

func TestWriteSubmissionsZip(t *testing.T) {
	svc := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/assets/a1/data/":
			fmt.Fprint(w, `{"count": 1, "results": [{"respondent": {"age": 31}}]}`)
		case "/api/v2/assets/a2/data/":
			fmt.Fprint(w, `{"count": 0, "results": []}`)
		default:
			http.NotFound(w, r)
		}
	}))
	svc.Filtered = []kobo.Asset{
		{Name: "Census", UID: "a1"},
		{Name: "Empty", UID: "a2"},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteSubmissionsZip(context.Background(), &buf, nil))

	archive, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	// the form without submissions is skipped entirely
	require.Len(t, archive.File, 1)
	require.Equal(t, "Census_a1_submissions.json", archive.File[0].Name)

	entry, err := archive.File[0].Open()
	require.NoError(t, err)
	defer entry.Close()
	var contents bytes.Buffer
	_, err = contents.ReadFrom(entry)
	require.NoError(t, err)

	// rows are flattened before serialization
	require.Contains(t, contents.String(), `"respondent.age": 31`)
}
