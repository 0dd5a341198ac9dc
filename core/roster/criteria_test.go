package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core/rubric"
)

// scoredBook returns a book with one class and two scored students.
func scoredBook(t *testing.T) (b *Book, classID string, ids []string) {
	t.Helper()
	ctx := context.Background()
	b, _ = newTestBook(t)

	cls, err := b.AddClass(ctx, "6D")
	require.NoError(t, err)
	for _, st := range []struct {
		name   string
		scores map[string]float64
	}{
		{name: "Ali Vural", scores: map[string]float64{rubric.Odevler: 20, rubric.DerseKatilim: 20, rubric.Davranis: 15}},
		{name: "Ayşe Kaya", scores: map[string]float64{rubric.KitapDefter: 10, rubric.Davranis: 8}},
	} {
		s, err := b.AddStudent(ctx, cls.ID, st.name)
		require.NoError(t, err)
		for crit, v := range st.scores {
			_, err = b.UpdateScore(ctx, cls.ID, s.ID, crit, v)
			require.NoError(t, err)
		}
		ids = append(ids, s.ID)
	}
	return b, cls.ID, ids
}

func totals(b *Book, classID string) map[string]int {
	students, _ := b.Students(classID)
	m := make(map[string]int, len(students))
	for _, s := range students {
		m[s.ID] = s.Total
	}
	return m
}

func TestBook_AddCriterion(t *testing.T) {
	ctx := context.Background()
	b, classID, _ := scoredBook(t)
	before := totals(b, classID)

	c, err := b.AddCriterion(ctx, " Kuran ", 0, "")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Kuran", c.Name)
	assert.Equal(t, rubric.DefaultMaxScore, c.MaxScore)
	assert.Equal(t, rubric.DefaultIcon, c.Icon)
	assert.Equal(t, 110, b.MaxTotal())

	students, _ := b.Students(classID)
	for _, s := range students {
		v, ok := s.Scores[c.ID]
		assert.True(t, ok)
		assert.Zero(t, v)
	}
	assert.Equal(t, before, totals(b, classID))

	c, err = b.AddCriterion(ctx, "Proje", 500, "🧪")
	require.NoError(t, err)
	assert.Equal(t, rubric.MaxMaxScore, c.MaxScore)
	assert.Equal(t, "🧪", c.Icon)

	c, err = b.AddCriterion(ctx, "Ceza", -5, "")
	require.NoError(t, err)
	assert.Equal(t, rubric.MinMaxScore, c.MaxScore)

	assertTotals(t, b)
}

func TestBook_addThenDeleteCriterion(t *testing.T) {
	ctx := context.Background()
	b, classID, ids := scoredBook(t)
	before := totals(b, classID)

	c, err := b.AddCriterion(ctx, "Kuran", 10, "")
	require.NoError(t, err)
	_, err = b.UpdateScore(ctx, classID, ids[0], c.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, before[ids[0]]+6, totals(b, classID)[ids[0]])

	require.NoError(t, b.DeleteCriterion(ctx, c.ID))
	assert.Equal(t, before, totals(b, classID))
	assertTotals(t, b)
}

func TestBook_DeleteCriterion(t *testing.T) {
	ctx := context.Background()
	b, classID, ids := scoredBook(t)

	ali, _ := b.Student(classID, ids[0])
	require.Equal(t, 15, ali.Scores[rubric.Davranis])
	require.Equal(t, 55, ali.Total)

	require.NoError(t, b.DeleteCriterion(ctx, rubric.Davranis))
	ali, _ = b.Student(classID, ids[0])
	assert.Equal(t, 40, ali.Total)
	_, ok := ali.Scores[rubric.Davranis]
	assert.False(t, ok)
	assert.Equal(t, 80, b.MaxTotal())

	t.Run("unknown id", func(t *testing.T) {
		assert.NoError(t, b.DeleteCriterion(ctx, "nope"))
		assert.Len(t, b.Criteria(), 5)
	})

	t.Run("last criterion is kept", func(t *testing.T) {
		for _, c := range b.Criteria()[1:] {
			require.NoError(t, b.DeleteCriterion(ctx, c.ID))
		}
		last := b.Criteria()
		require.Len(t, last, 1)
		assert.Equal(t, ErrLastCriterion, b.DeleteCriterion(ctx, last[0].ID))
		assert.Len(t, b.Criteria(), 1)
	})

	assertTotals(t, b)
}

func TestBook_UpdateCriterion(t *testing.T) {
	ctx := context.Background()
	b, classID, ids := scoredBook(t)
	ptr := func(i int) *int { return &i }
	str := func(s string) *string { return &s }

	t.Run("shrink clamps scores", func(t *testing.T) {
		require.NoError(t, b.UpdateCriterion(ctx, rubric.Davranis, CriterionUpdate{MaxScore: ptr(10)}))

		ali, _ := b.Student(classID, ids[0])
		assert.Equal(t, 10, ali.Scores[rubric.Davranis])
		assert.Equal(t, 50, ali.Total, "reduced by exactly 15-10")

		ayse, _ := b.Student(classID, ids[1])
		assert.Equal(t, 8, ayse.Scores[rubric.Davranis])
		assert.Equal(t, 18, ayse.Total)
	})

	t.Run("grow keeps scores", func(t *testing.T) {
		require.NoError(t, b.UpdateCriterion(ctx, rubric.Davranis, CriterionUpdate{MaxScore: ptr(300)}))
		c, _ := b.Criterion(rubric.Davranis)
		assert.Equal(t, rubric.MaxMaxScore, c.MaxScore)

		ali, _ := b.Student(classID, ids[0])
		assert.Equal(t, 10, ali.Scores[rubric.Davranis])
	})

	t.Run("name and icon", func(t *testing.T) {
		require.NoError(t, b.UpdateCriterion(ctx, rubric.Davranis, CriterionUpdate{Name: str(" Tutum "), Icon: str("  ")}))
		c, _ := b.Criterion(rubric.Davranis)
		assert.Equal(t, "Tutum", c.Name)
		assert.Equal(t, "⭐", c.Icon, "blank icon is ignored")
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := b.Snapshot()
		assert.NoError(t, b.UpdateCriterion(ctx, "nope", CriterionUpdate{MaxScore: ptr(1)}))
		assert.Equal(t, before, b.Snapshot())
	})

	_, err := b.Criterion("nope")
	assert.Equal(t, ErrCriterionNotFound, err)
	assertTotals(t, b)
}

func TestBook_ResetCriteria(t *testing.T) {
	ctx := context.Background()
	b, classID, ids := scoredBook(t)

	extra, err := b.AddCriterion(ctx, "Kuran", 10, "")
	require.NoError(t, err)
	_, err = b.UpdateScore(ctx, classID, ids[0], extra.ID, 9)
	require.NoError(t, err)
	require.NoError(t, b.DeleteCriterion(ctx, rubric.Odevler))

	require.NoError(t, b.ResetCriteria(ctx))
	assert.Equal(t, rubric.Defaults(), b.Criteria())

	ali, _ := b.Student(classID, ids[0])
	_, ok := ali.Scores[extra.ID]
	assert.False(t, ok, "orphan entries are pruned right away")
	assert.Equal(t, 0, ali.Scores[rubric.Odevler], "re-added criteria are seeded at 0")
	assert.Equal(t, 35, ali.Total)
	assertTotals(t, b)
}
