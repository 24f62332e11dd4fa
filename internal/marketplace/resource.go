package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const (
	listAllPageSize = 500
	listAllMaxPages = 1000
)

// ResourceSpec describes one REST resource. SequenceKey is the collection
// key of the bulk-sequence body; it varies per resource and is empty for
// resources without manual ordering.
type ResourceSpec struct {
	Name         string
	Path         string
	SequenceKey  string
	SequencePath string
}

func (s ResourceSpec) Sequenced() bool { return s.SequenceKey != "" }

type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Active  *bool
	Filters map[string]string
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Active != nil {
		v.Set("is_active", strconv.FormatBool(*q.Active))
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

type SequenceEntry struct {
	ID       int64 `json:"id"`
	Sequence int   `json:"sequence"`
}

// Resource proxies one REST resource. Methods map one-to-one onto HTTP
// verbs; there is no caching and no retry.
type Resource[T any] struct {
	client *Client
	spec   ResourceSpec
}

func NewResource[T any](c *Client, spec ResourceSpec) *Resource[T] {
	return &Resource[T]{client: c, spec: spec}
}

func (r *Resource[T]) Spec() ResourceSpec { return r.spec }

func (r *Resource[T]) itemPath(id int64) string {
	return r.spec.Path + "/" + strconv.FormatInt(id, 10)
}

func (r *Resource[T]) List(ctx context.Context, q ListQuery) ([]T, models.Meta, error) {
	var items []T
	meta, err := r.client.do(ctx, http.MethodGet, r.spec.Path, q.Values(), nil, &items)
	if err != nil {
		return nil, models.Meta{}, err
	}
	if items == nil {
		items = []T{}
	}
	if meta == nil {
		return items, models.Meta{Total: len(items), Limit: len(items), Page: 1, TotalPages: 1}, nil
	}
	return items, *meta, nil
}

// ListAll walks every page for the query. Endpoints that ignore paging
// answer without meta and are returned after the first call.
func (r *Resource[T]) ListAll(ctx context.Context, q ListQuery) ([]T, error) {
	if q.Limit <= 0 {
		q.Limit = listAllPageSize
	}
	var all []T
	for page := 1; page <= listAllMaxPages; page++ {
		q.Page = page
		var items []T
		meta, err := r.client.do(ctx, http.MethodGet, r.spec.Path, q.Values(), nil, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if meta == nil || page >= meta.TotalPages || len(items) == 0 {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if _, err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	if _, err := r.client.do(ctx, http.MethodPost, r.spec.Path, nil, rec, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	var out T
	if _, err := r.client.do(ctx, http.MethodPut, r.itemPath(id), nil, rec, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
	return err
}

// SetActive flips the soft-enable flag through PATCH <path>/:id/activate
// or /deactivate.
func (r *Resource[T]) SetActive(ctx context.Context, id int64, active bool) error {
	action := "/deactivate"
	if active {
		action = "/activate"
	}
	_, err := r.client.do(ctx, http.MethodPatch, r.itemPath(id)+action, nil, nil, nil)
	return err
}

var errNoSequence = errors.New("resource has no bulk sequence endpoint")

// BulkSequence writes the whole order in one call:
// PUT <path><sequence path> {"<key>": [{id, sequence}, ...]}.
func (r *Resource[T]) BulkSequence(ctx context.Context, entries []SequenceEntry) error {
	if !r.spec.Sequenced() {
		return fmt.Errorf("%s: %w", r.spec.Name, errNoSequence)
	}
	body := map[string][]SequenceEntry{r.spec.SequenceKey: entries}
	_, err := r.client.do(ctx, http.MethodPut, r.spec.Path+r.spec.SequencePath, nil, body, nil)
	return err
}
