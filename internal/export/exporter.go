package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const ResourceEmployers = "employers"

type EmployerLister interface {
	ListAll(ctx context.Context, q marketplace.ListQuery) ([]models.Employer, error)
}

// RecordStore persists export bookkeeping rows.
type RecordStore interface {
	CreateExport(ctx context.Context, rec *models.ExportRecord) error
	ExportsBefore(ctx context.Context, before time.Time) ([]models.ExportRecord, error)
	DeleteExport(ctx context.Context, id string) error
}

type Exporter struct {
	employers EmployerLister
	storage   Storage
	records   RecordStore
	log       *logger.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewExporter(employers EmployerLister, storage Storage, records RecordStore, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{
		employers: employers,
		storage:   storage,
		records:   records,
		log:       log.Named("export"),
		now:       time.Now,
		loc:       time.Local,
	}
}

func (e *Exporter) Storage() Storage { return e.storage }

// Employers fetches every employer page matching q and stores the CSV.
func (e *Exporter) Employers(ctx context.Context, operatorID string, q marketplace.ListQuery) (*models.ExportRecord, error) {
	q.Page, q.Limit = 0, 0
	rows, err := e.employers.ListAll(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch employers: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteEmployers(&buf, rows); err != nil {
		return nil, err
	}

	now := e.now().In(e.loc)
	name := Filename(ResourceEmployers, now)
	key := path.Join(ResourceEmployers, now.Format("2006/01"), fmt.Sprintf("%d_%s", now.UnixNano(), name))
	if err := e.storage.Put(ctx, key, &buf); err != nil {
		return nil, err
	}

	rec := &models.ExportRecord{
		OperatorID: operatorID,
		Resource:   ResourceEmployers,
		Filename:   name,
		ObjectKey:  key,
		Backend:    e.storage.Backend(),
		RowCount:   len(rows),
		Filters:    filterMap(q),
	}
	if err := e.records.CreateExport(ctx, rec); err != nil {
		_ = e.storage.Delete(ctx, key)
		return nil, fmt.Errorf("record export: %w", err)
	}
	e.log.Infof("exported %d employers to %s (%s)", len(rows), key, rec.Backend)
	return rec, nil
}

// DownloadURL returns a direct link when the storage can presign, "" when
// the file has to be streamed through the console.
func (e *Exporter) DownloadURL(ctx context.Context, rec *models.ExportRecord, ttl time.Duration) (string, error) {
	p, ok := e.storage.(Presigner)
	if !ok {
		return "", nil
	}
	return p.Presign(ctx, rec.ObjectKey, ttl)
}

// Prune removes exports created before cutoff, file first.
func (e *Exporter) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	old, err := e.records.ExportsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range old {
		if err := e.storage.Delete(ctx, rec.ObjectKey); err != nil {
			e.log.Warnf("prune export %s: %v", rec.ID, err)
			continue
		}
		if err := e.records.DeleteExport(ctx, rec.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func filterMap(q marketplace.ListQuery) map[string]interface{} {
	m := map[string]interface{}{}
	if q.Search != "" {
		m["search"] = q.Search
	}
	if q.Active != nil {
		m["is_active"] = *q.Active
	}
	for k, v := range q.Filters {
		if v != "" {
			m[k] = v
		}
	}
	return m
}
