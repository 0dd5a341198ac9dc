package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core/rubric"
)

func TestBook_Statistics(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		b, _ := newTestBook(t)
		_, _ = b.AddClass(ctx, "6D")
		stats := b.Statistics()
		assert.Equal(t, 1, stats.ClassCount)
		assert.Equal(t, 0, stats.StudentCount)
		assert.Equal(t, 100, stats.MaxTotal)
		assert.Empty(t, stats.Classes)
		assert.Empty(t, stats.Criteria)
	})

	b, _ := newTestBook(t)
	c6d, _ := b.AddClass(ctx, "6D")
	_, _ = b.AddClass(ctx, "empty")
	c7a, _ := b.AddClass(ctx, "7A")

	set := func(classID, name string, scores map[string]float64) {
		s, err := b.AddStudent(ctx, classID, name)
		require.NoError(t, err)
		for id, v := range scores {
			_, err = b.UpdateScore(ctx, classID, s.ID, id, v)
			require.NoError(t, err)
		}
	}
	set(c6d.ID, "Ali", map[string]float64{rubric.Odevler: 20, rubric.KitapDefter: 7})  // 27
	set(c6d.ID, "Ayşe", map[string]float64{rubric.Odevler: 15, rubric.Davranis: 20}) // 35
	set(c7a.ID, "Can", map[string]float64{rubric.Odevler: 10, rubric.KitapDefter: 4}) // 14

	stats := b.Statistics()
	assert.Equal(t, 3, stats.ClassCount)
	assert.Equal(t, 3, stats.StudentCount)
	assert.Equal(t, []ClassStat{
		{ClassID: c6d.ID, Name: "6D", StudentCount: 2, Average: 31},
		{ClassID: c7a.ID, Name: "7A", StudentCount: 1, Average: 14},
	}, stats.Classes)

	// (27+35+14)/3 = 25.33
	assert.Equal(t, 25, stats.OverallAverage)
	assert.Equal(t, 25, stats.OverallPercentage)

	require.Len(t, stats.Criteria, 6)
	odevler := stats.Criteria[1]
	assert.Equal(t, rubric.Odevler, odevler.CriterionID)
	assert.Equal(t, 15.0, odevler.Average)
	assert.Equal(t, 75, odevler.Percentage)

	kitap := stats.Criteria[0]
	assert.InDelta(t, 3.7, kitap.Average, 1e-9) // 11/3
	assert.Equal(t, 37, kitap.Percentage)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.0, round(2.5))
	assert.Equal(t, 2.0, round(2.49))
	assert.Equal(t, 0.0, round(-0.5))
	assert.Equal(t, -1.0, round(-0.51))
}
