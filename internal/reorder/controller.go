package reorder

import (
	"context"
	"sync"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

type (
	FetchFunc[T any]   func(ctx context.Context) ([]T, error)
	PersistFunc[T any] func(ctx context.Context, items []T) error
)

// Controller owns one list page's ordering state. Drag handlers are no-ops
// unless canManage reports true at the time of the call.
type Controller[T models.Sequenced[T]] struct {
	mu    sync.Mutex
	state State[T]

	fetch     FetchFunc[T]
	persist   PersistFunc[T]
	canManage func() bool
	errorText func(error) string
	log       *logger.Logger
}

type Option[T models.Sequenced[T]] func(*Controller[T])

// WithErrorText sets how a persist failure is turned into the user notice.
func WithErrorText[T models.Sequenced[T]](fn func(error) string) Option[T] {
	return func(c *Controller[T]) { c.errorText = fn }
}

func WithLogger[T models.Sequenced[T]](l *logger.Logger) Option[T] {
	return func(c *Controller[T]) { c.log = l }
}

func NewController[T models.Sequenced[T]](fetch FetchFunc[T], persist PersistFunc[T], canManage func() bool, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		state:     Initial[T](nil),
		fetch:     fetch,
		persist:   persist,
		canManage: canManage,
		errorText: func(error) string { return defaultFailureText },
		log:       logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load replaces the list with the server's order.
func (c *Controller[T]) Load(ctx context.Context) error {
	items, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state = Reduce(c.state, Action(Reset[T]{Items: SortBySequence(items)}))
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	return s
}

func (c *Controller[T]) DragStart(i int) {
	if !c.canManage() {
		return
	}
	c.mu.Lock()
	c.state = Reduce(c.state, Action(DragStart{Index: i}))
	c.mu.Unlock()
}

func (c *Controller[T]) DragOver(j int) {
	if !c.canManage() {
		return
	}
	c.mu.Lock()
	c.state = Reduce(c.state, Action(DragOver{Index: j}))
	c.mu.Unlock()
}

// Drop finishes the gesture. When the drop changes the order, the new
// order is visible in Snapshot before the persist call returns. On persist
// failure the list is re-fetched and the persist error is returned.
func (c *Controller[T]) Drop(ctx context.Context, j int) (State[T], error) {
	if !c.canManage() {
		return c.Snapshot(), nil
	}

	c.mu.Lock()
	before := c.state.Items
	c.state = Reduce(c.state, Action(Drop{Index: j}))
	if c.state.Phase != Persisting {
		c.mu.Unlock()
		return c.Snapshot(), nil
	}
	optimistic := append([]T(nil), c.state.Items...)
	c.mu.Unlock()

	err := c.persist(ctx, optimistic)

	c.mu.Lock()
	if err == nil {
		c.state = Reduce(c.state, Action(PersistSucceeded{}))
		c.mu.Unlock()
		return c.Snapshot(), nil
	}
	c.state = Reduce(c.state, Action(PersistFailed{Text: c.errorText(err)}))
	c.mu.Unlock()
	c.log.Error(err, "sequence persist failed, resyncing from server")

	items, ferr := c.fetch(ctx)
	if ferr != nil {
		c.log.Error(ferr, "resync after failed persist")
		items = before
	} else {
		items = SortBySequence(items)
	}

	c.mu.Lock()
	c.state = Reduce(c.state, Action(Reset[T]{Items: items}))
	c.mu.Unlock()
	return c.Snapshot(), err
}

// Move runs a whole drag gesture from one index to another.
func (c *Controller[T]) Move(ctx context.Context, from, to int) (State[T], error) {
	c.DragStart(from)
	c.DragOver(to)
	return c.Drop(ctx, to)
}
