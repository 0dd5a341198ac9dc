package roster

import (
	"context"

	"github.com/trezcool/scorebook/core"
)

// Classes returns every class in user-defined order.
func (b *Book) Classes() []Class {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot().Classes
}

func (b *Book) Class(id string) (Class, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ci := b.classIndex(id)
	if ci < 0 {
		return Class{}, ErrClassNotFound
	}
	return b.classes[ci].clone(), nil
}

// AddClass appends a class. The name is trimmed but not validated here: callers enforce naming rules.
func (b *Book) AddClass(ctx context.Context, name string) (Class, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cls := b.newClass(name)
	b.classes = append(b.classes, cls)
	return cls.clone(), b.commit(ctx)
}

// AddClassWithStudents creates one class holding one student per name, in order.
func (b *Book) AddClassWithStudents(ctx context.Context, className string, studentNames []string) (Class, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cls := b.newClass(className)
	for _, name := range studentNames {
		cls.Students = append(cls.Students, b.newStudent(name))
	}
	b.classes = append(b.classes, cls)
	return cls.clone(), b.commit(ctx)
}

func (b *Book) RenameClass(ctx context.Context, id, name string) (Class, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci := b.classIndex(id)
	if ci < 0 {
		return Class{}, ErrClassNotFound
	}
	b.classes[ci].Name = core.CleanString(name)
	return b.classes[ci].clone(), b.commit(ctx)
}

func (b *Book) DeleteClass(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci := b.classIndex(id)
	if ci < 0 {
		return ErrClassNotFound
	}
	b.classes = append(b.classes[:ci], b.classes[ci+1:]...)
	return b.commit(ctx)
}

// ReorderClasses moves the class at index `from` to index `to`.
func (b *Book) ReorderClasses(ctx context.Context, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	classes, err := move(b.classes, from, to)
	if err != nil {
		return err
	}
	b.classes = classes
	return b.commit(ctx)
}

func (b *Book) newClass(name string) Class {
	return Class{
		ID:        newID(),
		Name:      core.CleanString(name),
		Students:  []Student{},
		CreatedAt: core.NowFunc(),
	}
}
