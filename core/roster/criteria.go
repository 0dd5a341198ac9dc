package roster

import (
	"context"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/rubric"
)

// Criteria returns the current rubric in display order.
func (b *Book) Criteria() []rubric.Criterion {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return rubric.Clone(b.criteria)
}

func (b *Book) Criterion(id string) (rubric.Criterion, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := rubric.Find(b.criteria, id)
	if !ok {
		return rubric.Criterion{}, ErrCriterionNotFound
	}
	return c, nil
}

// MaxTotal is the highest total a student can reach under the current rubric.
func (b *Book) MaxTotal() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return rubric.MaxTotal(b.criteria)
}

// AddCriterion appends a criterion and seeds a 0 score for it on every student.
// A maxScore of 0 means "not provided" and falls back to rubric.DefaultMaxScore.
func (b *Book) AddCriterion(ctx context.Context, name string, maxScore int, icon string) (rubric.Criterion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	icon = core.CleanString(icon)
	if icon == "" {
		icon = rubric.DefaultIcon
	}
	c := rubric.Criterion{
		ID:       newID(),
		Name:     core.CleanString(name),
		MaxScore: rubric.NormalizeMaxScore(maxScore),
		Icon:     icon,
	}
	b.criteria = append(b.criteria, c)
	b.reconcileAll()
	return c, b.commit(ctx)
}

// UpdateCriterion changes the given fields of a criterion. Unknown ids are ignored.
// Shrinking the max score clamps the scores above it.
func (b *Book) UpdateCriterion(ctx context.Context, id string, upd CriterionUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i := range b.criteria {
		if b.criteria[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	c := &b.criteria[idx]
	if upd.Name != nil {
		c.Name = core.CleanString(*upd.Name)
	}
	if upd.Icon != nil {
		if icon := core.CleanString(*upd.Icon); icon != "" {
			c.Icon = icon
		}
	}
	if upd.MaxScore != nil {
		c.MaxScore = rubric.ClampMaxScore(*upd.MaxScore)
	}
	b.reconcileAll()
	return b.commit(ctx)
}

// DeleteCriterion removes a criterion and its score entry on every student.
// The last criterion cannot be deleted. Unknown ids are ignored.
func (b *Book) DeleteCriterion(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := rubric.Find(b.criteria, id); !ok {
		return nil
	}
	if len(b.criteria) <= 1 {
		return ErrLastCriterion
	}

	criteria := make([]rubric.Criterion, 0, len(b.criteria)-1)
	for _, c := range b.criteria {
		if c.ID != id {
			criteria = append(criteria, c)
		}
	}
	b.criteria = criteria
	b.reconcileAll()
	return b.commit(ctx)
}

// ResetCriteria replaces the rubric with the defaults. Scores are pruned and seeded right away.
func (b *Book) ResetCriteria(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.criteria = rubric.Defaults()
	b.reconcileAll()
	return b.commit(ctx)
}
