package roster

import (
	"context"
	"math"

	"github.com/trezcool/scorebook/core/rubric"
)

// Score bands, by percentage of the max total.
const (
	BandExcellent = "excellent" // >= 90%
	BandGood      = "good"      // >= 70%
	BandFair      = "fair"      // >= 50%
	BandPoor      = "poor"
)

// UpdateScore is the only way a score is written.
// The raw value is floored and clamped to [0, criterion.MaxScore]; the total is recomputed.
func (b *Book) UpdateScore(ctx context.Context, classID, studentID, criterionID string, raw float64) (Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.student(classID, studentID)
	if err != nil {
		return Student{}, err
	}
	crit, ok := rubric.Find(b.criteria, criterionID)
	if !ok {
		return Student{}, ErrCriterionNotFound
	}

	s.Scores[criterionID] = ClampScore(raw, crit.MaxScore)
	recalculate(s)
	if b.deps.Recorder != nil {
		b.deps.Recorder.RecordScoreUpdate()
	}
	return s.clone(), b.commit(ctx)
}

// ClampScore floors `raw` and bounds it to [0, max]. NaN counts as 0.
func ClampScore(raw float64, max int) int {
	if math.IsNaN(raw) {
		return 0
	}
	v := math.Floor(raw)
	if v < 0 {
		return 0
	}
	if v > float64(max) {
		return max
	}
	return int(v)
}

// ScoreBand grades a total against the max total.
func ScoreBand(total, maxTotal int) string {
	if maxTotal <= 0 {
		return BandPoor
	}
	pct := float64(total) * 100 / float64(maxTotal)
	switch {
	case pct >= 90:
		return BandExcellent
	case pct >= 70:
		return BandGood
	case pct >= 50:
		return BandFair
	default:
		return BandPoor
	}
}

func recalculate(s *Student) {
	s.Total = s.Scores.Sum()
}

// reconcile makes a student's scores match the rubric exactly:
// entries of unknown criteria are pruned, missing ones are seeded at 0 and
// values above a criterion's max are clamped. The total is then recomputed.
func reconcile(s *Student, criteria []rubric.Criterion) {
	if s.Scores == nil {
		s.Scores = make(Scores, len(criteria))
	}
	maxScores := make(map[string]int, len(criteria))
	for _, c := range criteria {
		maxScores[c.ID] = c.MaxScore
	}
	for id, v := range s.Scores {
		max, ok := maxScores[id]
		switch {
		case !ok:
			delete(s.Scores, id)
		case v > max:
			s.Scores[id] = max
		case v < 0:
			s.Scores[id] = 0
		}
	}
	for id := range maxScores {
		if _, ok := s.Scores[id]; !ok {
			s.Scores[id] = 0
		}
	}
	recalculate(s)
}

// reconcileAll runs reconcile over every student. Must be called with b.mu held.
func (b *Book) reconcileAll() {
	if b.classes == nil {
		b.classes = []Class{}
	}
	for ci := range b.classes {
		if b.classes[ci].Students == nil {
			b.classes[ci].Students = []Student{}
		}
		for si := range b.classes[ci].Students {
			reconcile(&b.classes[ci].Students[si], b.criteria)
		}
	}
}
