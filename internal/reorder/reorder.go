// Package reorder implements manual drag-and-drop ordering of a list of
// sequenced records: speculative apply, then confirm or roll back.
//
// Reduce is pure. Controller runs the effects around it: the single bulk
// persist call and, on failure, the re-fetch that resets the list to the
// server's order.
package reorder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

var (
	ErrNotSequenced = errors.New("resource does not support manual ordering")
	ErrOutOfRange   = errors.New("index out of range")
)

type Phase int

const (
	Idle Phase = iota
	Dragging
	Persisting
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Persisting:
		return "persisting"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

const noSource = -1

type State[T any] struct {
	Phase  Phase
	Source int
	Items  []T
	Notice *models.Message
}

func Initial[T any](items []T) State[T] {
	return State[T]{Phase: Idle, Source: noSource, Items: items}
}

type Action interface{ isAction() }

type DragStart struct{ Index int }
type DragOver struct{ Index int }
type Drop struct{ Index int }
type PersistSucceeded struct{ Text string }
type PersistFailed struct{ Text string }
type Reset[T any] struct{ Items []T }

func (DragStart) isAction()        {}
func (DragOver) isAction()         {}
func (Drop) isAction()             {}
func (PersistSucceeded) isAction() {}
func (PersistFailed) isAction()    {}
func (Reset[T]) isAction()         {}

const (
	defaultSuccessText = "Sequence updated successfully"
	defaultFailureText = "Failed to update sequence"
)

// Reduce applies one action. Unknown or out-of-phase actions leave the
// state as it is.
func Reduce[T models.Sequenced[T]](s State[T], a Action) State[T] {
	switch act := a.(type) {
	case DragStart:
		if s.Phase != Idle && s.Phase != Dragging {
			return s
		}
		if act.Index < 0 || act.Index >= len(s.Items) {
			return s
		}
		s.Phase = Dragging
		s.Source = act.Index
		s.Notice = nil
		return s

	case DragOver:
		return s

	case Drop:
		if s.Phase != Dragging {
			return s
		}
		from := s.Source
		s.Source = noSource
		if from == noSource || from == act.Index {
			s.Phase = Idle
			return s
		}
		moved, err := Move(s.Items, from, act.Index)
		if err != nil {
			s.Phase = Idle
			return s
		}
		s.Items = moved
		s.Phase = Persisting
		return s

	case PersistSucceeded:
		if s.Phase != Persisting {
			return s
		}
		s.Phase = Idle
		s.Notice = notice(models.MessageSuccess, act.Text, defaultSuccessText)
		return s

	case PersistFailed:
		if s.Phase != Persisting {
			return s
		}
		s.Phase = Failed
		s.Notice = notice(models.MessageError, act.Text, defaultFailureText)
		return s

	case Reset[T]:
		s.Phase = Idle
		s.Source = noSource
		s.Items = act.Items
		return s
	}
	return s
}

func notice(kind, text, fallback string) *models.Message {
	if text == "" {
		text = fallback
	}
	return &models.Message{Type: kind, Text: text}
}

// Move removes the element at from, re-inserts it at to, and rewrites
// every element's sequence to its new 1-based position. The input slice
// is not modified.
func Move[T models.Sequenced[T]](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("move %d -> %d in list of %d: %w", from, to, n, ErrOutOfRange)
	}

	out := make([]T, 0, n)
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	picked := items[from]
	out = append(out, picked)
	copy(out[to+1:], out[to:n-1])
	out[to] = picked

	return Renumber(out), nil
}

// Renumber returns a copy with sequence = index + 1 for every element.
func Renumber[T models.Sequenced[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.WithSeq(i + 1)
	}
	return out
}

// SortBySequence orders rows by sequence, rows without one last, ties by id.
func SortBySequence[T models.Sequenced[T]](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].Seq()
		b, bok := out[j].Seq()
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		}
		return out[i].RecordID() < out[j].RecordID()
	})
	return out
}

// Entries is the bulk-sequence body for items, in list order. Rows
// without a sequence take their 1-based position.
func Entries[T models.Sequenced[T]](items []T) []marketplace.SequenceEntry {
	out := make([]marketplace.SequenceEntry, len(items))
	for i, it := range items {
		n, ok := it.Seq()
		if !ok {
			n = i + 1
		}
		out[i] = marketplace.SequenceEntry{ID: it.RecordID(), Sequence: n}
	}
	return out
}
