// Package roster owns classes, students and their scores against the rubric of one scope.
//
// A Book is the in-memory state of a snapshot. Every mutation is applied in memory first and then
// written through its Saver; a failed write keeps the mutation and is returned as a storage error.
package roster

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/rubric"
)

var (
	// errors
	ErrClassNotFound     = errors.New("class not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrLastCriterion     = errors.New("at least one criterion is required")
	ErrIndexOutOfRange   = errors.New("index out of range")

	newID = uuid.NewString // mockable
)

type (
	// Saver persists a full snapshot of a Book.
	Saver interface {
		SaveSnapshot(ctx context.Context, snap Snapshot) error
	}

	// SaverFunc adapts a function to Saver.
	SaverFunc func(ctx context.Context, snap Snapshot) error

	// Recorder receives counters about book activity.
	Recorder interface {
		RecordScoreUpdate()
		RecordSave(err error)
	}

	Deps struct {
		Saver    Saver
		Logger   core.Logger
		Recorder Recorder // optional
	}

	Book struct {
		mu       sync.RWMutex
		classes  []Class
		criteria []rubric.Criterion
		deps     Deps
	}
)

func (f SaverFunc) SaveSnapshot(ctx context.Context, snap Snapshot) error { return f(ctx, snap) }

// Open builds a Book from a snapshot. Missing criteria fall back to the defaults and every student's
// scores are reconciled with the rubric, repairing stale totals and orphan entries.
func Open(snap Snapshot, deps Deps) *Book {
	snap = snap.Clone()
	b := &Book{
		classes:  snap.Classes,
		criteria: snap.Criteria,
		deps:     deps,
	}
	if len(b.criteria) == 0 {
		b.criteria = rubric.Defaults()
	}
	b.reconcileAll()
	return b
}

// Snapshot returns a deep copy of the current state.
func (b *Book) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot()
}

func (b *Book) snapshot() Snapshot {
	return Snapshot{Classes: b.classes, Criteria: b.criteria}.Clone()
}

// commit writes the current state through the Saver. Must be called with b.mu held.
func (b *Book) commit(ctx context.Context) error {
	if b.deps.Saver == nil {
		return nil
	}
	err := b.deps.Saver.SaveSnapshot(ctx, b.snapshot())
	if b.deps.Recorder != nil {
		b.deps.Recorder.RecordSave(err)
	}
	if err != nil {
		if b.deps.Logger != nil {
			b.deps.Logger.Error("saving snapshot failed; changes are kept in memory", err)
		}
		return errors.Wrap(err, "saving snapshot")
	}
	return nil
}

func (b *Book) classIndex(id string) int {
	for i := range b.classes {
		if b.classes[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Book) studentIndex(classIdx int, id string) int {
	for i := range b.classes[classIdx].Students {
		if b.classes[classIdx].Students[i].ID == id {
			return i
		}
	}
	return -1
}

// student returns a pointer to the stored student. Must be called with b.mu held.
func (b *Book) student(classID, studentID string) (*Student, error) {
	ci := b.classIndex(classID)
	if ci < 0 {
		return nil, ErrClassNotFound
	}
	si := b.studentIndex(ci, studentID)
	if si < 0 {
		return nil, ErrStudentNotFound
	}
	return &b.classes[ci].Students[si], nil
}

// move removes the item at `from` and inserts it at `to`.
func move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return items, ErrIndexOutOfRange
	}
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]T{item}, items[to:]...)...)
	return items, nil
}
