package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classNames(classes []Class) []string {
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	return names
}

func studentNames(students []Student) []string {
	names := make([]string, 0, len(students))
	for _, s := range students {
		names = append(names, s.Name)
	}
	return names
}

func TestBook_classes(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBook(t)

	c6d, err := b.AddClass(ctx, "6D")
	require.NoError(t, err)
	c7a, _ := b.AddClass(ctx, "7A")
	c8b, _ := b.AddClass(ctx, "8B")
	assert.NotEmpty(t, c6d.ID)
	assert.NotEqual(t, c6d.ID, c7a.ID)
	assert.False(t, c6d.CreatedAt.IsZero())
	assert.Equal(t, []string{"6D", "7A", "8B"}, classNames(b.Classes()))

	got, err := b.Class(c7a.ID)
	require.NoError(t, err)
	assert.Equal(t, "7A", got.Name)

	_, err = b.Class("nope")
	assert.Equal(t, ErrClassNotFound, err)

	renamed, err := b.RenameClass(ctx, c7a.ID, " 7B ")
	require.NoError(t, err)
	assert.Equal(t, "7B", renamed.Name)

	_, err = b.RenameClass(ctx, "nope", "x")
	assert.Equal(t, ErrClassNotFound, err)

	require.NoError(t, b.ReorderClasses(ctx, 2, 0))
	assert.Equal(t, []string{"8B", "6D", "7B"}, classNames(b.Classes()))
	assert.Equal(t, []string{"8B", "6D", "7B"}, classNames(saver.last().Classes))

	assert.Equal(t, ErrIndexOutOfRange, b.ReorderClasses(ctx, 0, 3))
	assert.Equal(t, []string{"8B", "6D", "7B"}, classNames(b.Classes()))

	require.NoError(t, b.DeleteClass(ctx, c8b.ID))
	assert.Equal(t, []string{"6D", "7B"}, classNames(b.Classes()))
	assert.Equal(t, ErrClassNotFound, b.DeleteClass(ctx, c8b.ID))
}

func TestBook_AddClassWithStudents(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBook(t)

	cls, err := b.AddClassWithStudents(ctx, "6D", []string{"Ali Vural", " Ayşe Kaya ", "Mehmet Öz"})
	require.NoError(t, err)
	assert.Equal(t, "6D", cls.Name)
	assert.Equal(t, []string{"Ali Vural", "Ayşe Kaya", "Mehmet Öz"}, studentNames(cls.Students))
	assert.Len(t, saver.saved, 1, "the import is saved once")

	ids := map[string]bool{}
	for _, s := range cls.Students {
		ids[s.ID] = true
		assert.Equal(t, 0, s.Total)
		assert.Len(t, s.Scores, 6)
	}
	assert.Len(t, ids, 3)
	assertTotals(t, b)
}
