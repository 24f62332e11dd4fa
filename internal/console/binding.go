// Package console binds every marketplace resource to the shared form,
// list and reorder lifecycles, so the HTTP layer handles all resources
// through one Binding interface.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/forms"
	"github.com/madhava-poojari/jobs-admin-console/internal/listpage"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/reorder"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
)

var ErrBadPayload = errors.New("invalid request body")

// Actor is who performs a console action.
type Actor struct {
	OperatorID string
	Perms      permission.Checker
}

// Area names the permission pair guarding a resource.
type Area string

const (
	AreaMasters       Area = "masters"
	AreaSubscriptions Area = "subscriptions"
	AreaEmployers     Area = "employers"
	AreaUsers         Area = "users"
	AreaAdmins        Area = "admins"
)

func (a Area) View() permission.Permission   { return permission.Permission(string(a) + ".view") }
func (a Area) Manage() permission.Permission { return permission.Permission(string(a) + ".manage") }

// Result is the outcome of a mutation: the saved row (if any) and the
// {type, text} message for the operator.
type Result struct {
	Record  interface{}
	Message models.Message
}

// Binding is one resource seen by the HTTP layer.
type Binding interface {
	Name() string
	Noun() string
	Area() Area
	Sequenced() bool

	List(ctx context.Context, a Actor, q listpage.Query) (interface{}, listpage.Pagination, error)
	Get(ctx context.Context, a Actor, id int64) (interface{}, error)
	Create(ctx context.Context, a Actor, body []byte) (Result, error)
	Update(ctx context.Context, a Actor, id int64, body []byte) (Result, error)
	Delete(ctx context.Context, a Actor, id int64) (Result, error)
	SetActive(ctx context.Context, a Actor, id int64, active bool) (Result, error)
	Reorder(ctx context.Context, a Actor, from, to int) (interface{}, Result, error)
}

type crud[T models.Record] interface {
	forms.Backend[T]
	ListAll(ctx context.Context, q marketplace.ListQuery) ([]T, error)
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	Spec() marketplace.ResourceSpec
}

type deps struct {
	translator translation.Translator
	target     string
	recorder   audit.Recorder
	log        *logger.Logger
}

type binding[T models.Record] struct {
	res  crud[T]
	noun string
	area Area
	deps deps
}

func newBinding[T models.Record](res crud[T], noun string, area Area, d deps) *binding[T] {
	return &binding[T]{res: res, noun: noun, area: area, deps: d}
}

func (b *binding[T]) Name() string    { return b.res.Spec().Name }
func (b *binding[T]) Noun() string    { return b.noun }
func (b *binding[T]) Area() Area      { return b.area }
func (b *binding[T]) Sequenced() bool { return false }

func (b *binding[T]) can(a Actor, p permission.Permission) bool {
	return a.Perms != nil && a.Perms.Can(p)
}

func (b *binding[T]) requireManage(a Actor) error {
	if !b.can(a, b.area.Manage()) {
		return permission.ErrForbidden
	}
	return nil
}

func (b *binding[T]) fetchAll(ctx context.Context) ([]T, error) {
	return b.res.ListAll(ctx, marketplace.ListQuery{})
}

func (b *binding[T]) List(ctx context.Context, a Actor, q listpage.Query) (interface{}, listpage.Pagination, error) {
	page := listpage.New[T](b.fetchAll, func() bool { return b.can(a, b.area.View()) })
	if err := page.Refresh(ctx); err != nil {
		return nil, listpage.Pagination{}, err
	}
	rows, pg := page.View(q)
	return rows, pg, nil
}

func (b *binding[T]) Get(ctx context.Context, a Actor, id int64) (interface{}, error) {
	if !b.can(a, b.area.View()) {
		return nil, permission.ErrForbidden
	}
	return b.res.Get(ctx, id)
}

func (b *binding[T]) form(msg *models.Message) *forms.Form[T] {
	opts := []forms.Option[T]{
		forms.OnSuccess[T](func(m models.Message) { *msg = m }),
		forms.WithLogger[T](b.deps.log),
	}
	if b.deps.translator != nil {
		opts = append(opts, forms.WithTranslator[T](b.deps.translator, b.deps.target))
	}
	return forms.New[T](b.res, b.noun, opts...)
}

func decode[T any](body []byte, into *T) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func (b *binding[T]) Create(ctx context.Context, a Actor, body []byte) (Result, error) {
	if err := b.requireManage(a); err != nil {
		return Result{}, err
	}
	var rec T
	if err := decode(body, &rec); err != nil {
		return Result{}, err
	}

	var msg models.Message
	f := b.form(&msg)
	if err := f.Open(ctx, 0); err != nil {
		return Result{Message: models.ErrorMessage(f.Error())}, err
	}
	saved, err := f.Submit(ctx, rec)
	if err != nil {
		return Result{Message: models.ErrorMessage(f.Error())}, err
	}
	b.record(ctx, a, audit.ActionCreated, saved.RecordID(), nil)
	return Result{Record: saved, Message: msg}, nil
}

// Update loads the current row and applies body on top of it, so fields
// the caller leaves out keep their stored values.
func (b *binding[T]) Update(ctx context.Context, a Actor, id int64, body []byte) (Result, error) {
	if err := b.requireManage(a); err != nil {
		return Result{}, err
	}

	var msg models.Message
	f := b.form(&msg)
	if err := f.Open(ctx, id); err != nil {
		return Result{Message: models.ErrorMessage(f.Error())}, err
	}
	rec := f.Record()
	if err := decode(body, &rec); err != nil {
		return Result{}, err
	}
	saved, err := f.Submit(ctx, rec)
	if err != nil {
		return Result{Message: models.ErrorMessage(f.Error())}, err
	}
	b.record(ctx, a, audit.ActionUpdated, id, nil)
	return Result{Record: saved, Message: msg}, nil
}

func (b *binding[T]) Delete(ctx context.Context, a Actor, id int64) (Result, error) {
	if err := b.requireManage(a); err != nil {
		return Result{}, err
	}
	if err := b.res.Delete(ctx, id); err != nil {
		text := marketplace.ErrorMessage(err, fmt.Sprintf("Failed to delete %s", strings.ToLower(b.noun)))
		return Result{Message: models.ErrorMessage(text)}, err
	}
	b.record(ctx, a, audit.ActionDeleted, id, nil)
	return Result{Message: models.SuccessMessage(fmt.Sprintf("%s deleted successfully", b.noun))}, nil
}

func (b *binding[T]) SetActive(ctx context.Context, a Actor, id int64, active bool) (Result, error) {
	if err := b.requireManage(a); err != nil {
		return Result{}, err
	}
	verb, action := "deactivated", audit.ActionDeactivated
	if active {
		verb, action = "activated", audit.ActionActivated
	}
	if err := b.res.SetActive(ctx, id, active); err != nil {
		text := marketplace.ErrorMessage(err, fmt.Sprintf("Failed to update %s status", strings.ToLower(b.noun)))
		return Result{Message: models.ErrorMessage(text)}, err
	}
	b.record(ctx, a, action, id, nil)
	return Result{Message: models.SuccessMessage(fmt.Sprintf("%s %s successfully", b.noun, verb))}, nil
}

func (b *binding[T]) Reorder(ctx context.Context, a Actor, from, to int) (interface{}, Result, error) {
	return nil, Result{}, reorder.ErrNotSequenced
}

func (b *binding[T]) record(ctx context.Context, a Actor, action string, id int64, details interface{}) {
	if b.deps.recorder == nil {
		return
	}
	b.deps.recorder.Record(ctx, audit.Event{
		Action:     action,
		Resource:   b.Name(),
		RecordID:   id,
		OperatorID: a.OperatorID,
		Details:    details,
	})
}

type sequencedCrud[T models.Sequenced[T]] interface {
	crud[T]
	BulkSequence(ctx context.Context, entries []marketplace.SequenceEntry) error
}

// sequencedBinding adds manual ordering on top of binding.
type sequencedBinding[T models.Sequenced[T]] struct {
	*binding[T]
	seq sequencedCrud[T]
}

func newSequencedBinding[T models.Sequenced[T]](res sequencedCrud[T], noun string, area Area, d deps) *sequencedBinding[T] {
	return &sequencedBinding[T]{binding: newBinding[T](res, noun, area, d), seq: res}
}

func (s *sequencedBinding[T]) Sequenced() bool { return true }

// Reorder runs one drag gesture from index from to index to over the list
// in sequence order, and persists the whole renumbered list in one call.
func (s *sequencedBinding[T]) Reorder(ctx context.Context, a Actor, from, to int) (interface{}, Result, error) {
	if !s.can(a, s.area.Manage()) {
		return nil, Result{}, permission.ErrForbidden
	}

	persist := func(ctx context.Context, items []T) error {
		return s.seq.BulkSequence(ctx, reorder.Entries(items))
	}
	ctrl := reorder.NewController[T](s.fetchAll, persist, func() bool { return s.can(a, s.area.Manage()) },
		reorder.WithLogger[T](s.deps.log),
		reorder.WithErrorText[T](func(err error) string {
			return marketplace.ErrorMessage(err, "Failed to update sequence")
		}),
	)
	if err := ctrl.Load(ctx); err != nil {
		return nil, Result{}, err
	}
	if n := len(ctrl.Snapshot().Items); from < 0 || from >= n || to < 0 || to >= n {
		return nil, Result{}, fmt.Errorf("move %d -> %d in list of %d: %w", from, to, n, reorder.ErrOutOfRange)
	}

	st, err := ctrl.Move(ctx, from, to)
	res := Result{}
	if st.Notice != nil {
		res.Message = *st.Notice
	}
	if err != nil {
		return st.Items, res, err
	}
	if from != to {
		s.record(ctx, a, audit.ActionReordered, 0, map[string]int{"from": from, "to": to})
	}
	return st.Items, res, nil
}
