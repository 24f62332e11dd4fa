package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

func TestEscapeCell(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"":               "",
		"a,b":            `"a,b"`,
		`say "hi"`:       `"say ""hi"""`,
		"line1\nline2":   "\"line1\nline2\"",
		"cr\rhere":       "\"cr\rhere\"",
		" leading space": " leading space",
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeCell(in), "input %q", in)
	}
}

func TestEmployerCSVReparses(t *testing.T) {
	tricky := models.Employer{
		Name:        `Sharma "Bhai" Traders`,
		CompanyName: "Sharma, Sons & Co",
		Mobile:      "9876543210",
		Address:     "Shop 4\nMain Road",
		IsVerified:  true,
	}
	tricky.ID = 12
	tricky.IsActive = true

	var buf bytes.Buffer
	require.NoError(t, WriteEmployers(&buf, []models.Employer{tricky}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, EmployerHeader, records[0])

	row := records[1]
	assert.Equal(t, "12", row[0])
	assert.Equal(t, tricky.Name, row[1])
	assert.Equal(t, tricky.CompanyName, row[2])
	assert.Equal(t, tricky.Address, row[8])
	assert.Equal(t, "Yes", row[9])
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 7, 15, 4, 9, 0, time.UTC)
	assert.Equal(t, "employers_07-03-2024_03_04_09_PM_.csv", Filename("employers", at))
	at = time.Date(2024, 12, 25, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, "employers_25-12-2024_12_30_00_AM_.csv", Filename("employers", at))
}

type listerStub struct {
	rows []models.Employer
	got  marketplace.ListQuery
	err  error
}

func (l *listerStub) ListAll(ctx context.Context, q marketplace.ListQuery) ([]models.Employer, error) {
	l.got = q
	return l.rows, l.err
}

type memRecords struct {
	rows []models.ExportRecord
}

func (m *memRecords) CreateExport(ctx context.Context, rec *models.ExportRecord) error {
	rec.ID = "exp-" + rec.Filename
	rec.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memRecords) ExportsBefore(ctx context.Context, before time.Time) ([]models.ExportRecord, error) {
	var out []models.ExportRecord
	for _, r := range m.rows {
		if r.CreatedAt.Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) DeleteExport(ctx context.Context, id string) error {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestExporterStoresAndPrunes(t *testing.T) {
	ctx := context.Background()
	active := true
	e1 := models.Employer{Name: "A", Mobile: "1111111111"}
	e2 := models.Employer{Name: "B", Mobile: "2222222222"}
	lister := &listerStub{rows: []models.Employer{e1, e2}}
	records := &memRecords{}
	store := NewFileStorage(t.TempDir())

	ex := NewExporter(lister, store, records, nil)
	ex.now = func() time.Time { return time.Date(2024, 3, 7, 9, 15, 0, 0, time.UTC) }
	ex.loc = time.UTC

	rec, err := ex.Employers(ctx, "OPR00ABCDE", marketplace.ListQuery{Page: 3, Limit: 10, Search: "sharma", Active: &active})
	require.NoError(t, err)

	assert.Zero(t, lister.got.Page, "export ignores the current page")
	assert.Equal(t, "employers_07-03-2024_09_15_00_AM_.csv", rec.Filename)
	assert.Equal(t, "local", rec.Backend)
	assert.Equal(t, 2, rec.RowCount)
	assert.Equal(t, "sharma", rec.Filters["search"])

	f, err := store.Open(ctx, rec.ObjectKey)
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, 3, strings.Count(string(body), "\n"))

	url, err := ex.DownloadURL(ctx, rec, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, url, "local storage streams through the console")

	n, err := ex.Prune(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, records.rows)
	_, err = store.Open(ctx, rec.ObjectKey)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestExporterFetchFailure(t *testing.T) {
	ex := NewExporter(&listerStub{err: errors.New("upstream down")}, NewFileStorage(t.TempDir()), &memRecords{}, nil)
	_, err := ex.Employers(context.Background(), "OPR00ABCDE", marketplace.ListQuery{})
	assert.Error(t, err)
}

func TestFileStorageRejectsEscapingKeys(t *testing.T) {
	s := NewFileStorage(t.TempDir())
	assert.Error(t, s.Put(context.Background(), "../outside.csv", strings.NewReader("x")))
}
