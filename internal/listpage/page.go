// Package listpage holds the list lifecycle shared by every resource page:
// permission-gated fetch, client-side search/sort/paginate, and the
// confirmation step in front of destructive row actions.
package listpage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
)

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

type SortKey string

const (
	SortSequence SortKey = "sequence"
	SortLabel    SortKey = "label"
	SortID       SortKey = "id"
)

type Query struct {
	Search string
	Active *bool
	SortBy SortKey
	Desc   bool
	Page   int
	Limit  int
	// Lang is the collation locale for label sorting. Empty means English.
	Lang string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// Meta converts to the response envelope's meta block.
func (p Pagination) Meta() *models.Meta {
	return &models.Meta{Total: p.Total, Limit: p.Limit, Page: p.Page, TotalPages: p.TotalPages}
}

// Paginate clamps page into [1, total_pages]. From/To are 1-based and both
// zero when there is nothing to show.
func Paginate(total, page, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if total < 0 {
		total = 0
	}
	pages := (total + limit - 1) / limit
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	p := Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
	if total > 0 {
		p.From = (page-1)*limit + 1
		p.To = p.From + limit - 1
		if p.To > total {
			p.To = total
		}
	}
	return p
}

type Phase int

const (
	Loading Phase = iota
	Ready
)

type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Page caches the last fetched rows of one resource.
type Page[T models.Record] struct {
	mu      sync.RWMutex
	phase   Phase
	rows    []T
	fetch   FetchFunc[T]
	canView func() bool
}

func New[T models.Record](fetch FetchFunc[T], canView func() bool) *Page[T] {
	return &Page[T]{fetch: fetch, canView: canView}
}

func (p *Page[T]) Phase() Phase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.phase
}

// Refresh re-fetches every row. Without view permission nothing is
// requested and the cached rows stay as they are.
func (p *Page[T]) Refresh(ctx context.Context) error {
	if !p.canView() {
		return permission.ErrForbidden
	}
	p.mu.Lock()
	p.phase = Loading
	p.mu.Unlock()

	rows, err := p.fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = Ready
	if err != nil {
		return err
	}
	p.rows = rows
	return nil
}

func (p *Page[T]) Rows() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]T(nil), p.rows...)
}

// View filters, sorts and slices the cached rows.
func (p *Page[T]) View(q Query) ([]T, Pagination) {
	return Apply(p.Rows(), q)
}

// Apply is View over an explicit slice. rows is not modified.
func Apply[T models.Record](rows []T, q Query) ([]T, Pagination) {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if q.Active != nil && r.Active() != *q.Active {
			continue
		}
		if needle != "" && !strings.Contains(r.SearchText(), needle) {
			continue
		}
		out = append(out, r)
	}

	sortRows(out, q)

	pg := Paginate(len(out), q.Page, q.Limit)
	if pg.Total == 0 {
		return []T{}, pg
	}
	return out[pg.From-1 : pg.To], pg
}

type sequenced interface {
	Seq() (int, bool)
}

func sortRows[T models.Record](rows []T, q Query) {
	key := q.SortBy
	if key == "" {
		key = SortSequence
		if len(rows) > 0 {
			if _, ok := any(rows[0]).(sequenced); !ok {
				key = SortID
			}
		}
	}

	var less func(a, b T) int
	switch key {
	case SortLabel:
		col := collate.New(tag(q.Lang), collate.IgnoreCase)
		less = func(a, b T) int { return col.CompareString(a.SortLabel(), b.SortLabel()) }
	case SortSequence:
		less = func(a, b T) int {
			as, _ := seqOf(a)
			bs, _ := seqOf(b)
			return as - bs
		}
	default:
		less = func(a, b T) int { return 0 }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if key == SortSequence {
			// rows without a sequence stay at the bottom in both directions
			_, iok := seqOf(rows[i])
			_, jok := seqOf(rows[j])
			if iok != jok {
				return iok
			}
		}
		c := less(rows[i], rows[j])
		if c == 0 {
			c = cmpID(rows[i].RecordID(), rows[j].RecordID())
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
}

func seqOf(r interface{}) (int, bool) {
	if s, ok := r.(sequenced); ok {
		return s.Seq()
	}
	return 0, false
}

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func tag(lang string) language.Tag {
	if lang == "" {
		return language.English
	}
	t, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return t
}
