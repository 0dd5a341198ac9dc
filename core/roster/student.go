package roster

import (
	"context"
	"strings"

	"github.com/trezcool/scorebook/core"
)

func (b *Book) Students(classID string) ([]Student, error) {
	return b.SearchStudents(classID, "")
}

// SearchStudents returns the students of a class whose name contains `query`, case-insensitively.
// A blank query returns every student.
func (b *Book) SearchStudents(classID, query string) ([]Student, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ci := b.classIndex(classID)
	if ci < 0 {
		return nil, ErrClassNotFound
	}
	query = core.CleanString(query, true /* lower */)
	students := make([]Student, 0, len(b.classes[ci].Students))
	for _, s := range b.classes[ci].Students {
		if query == "" || strings.Contains(strings.ToLower(s.Name), query) {
			students = append(students, s.clone())
		}
	}
	return students, nil
}

func (b *Book) Student(classID, studentID string) (Student, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, err := b.student(classID, studentID)
	if err != nil {
		return Student{}, err
	}
	return s.clone(), nil
}

// AddStudent appends a student with a zero score for every criterion.
func (b *Book) AddStudent(ctx context.Context, classID, name string) (Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci := b.classIndex(classID)
	if ci < 0 {
		return Student{}, ErrClassNotFound
	}
	s := b.newStudent(name)
	b.classes[ci].Students = append(b.classes[ci].Students, s)
	return s.clone(), b.commit(ctx)
}

func (b *Book) RenameStudent(ctx context.Context, classID, studentID, name string) (Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.student(classID, studentID)
	if err != nil {
		return Student{}, err
	}
	s.Name = core.CleanString(name)
	return s.clone(), b.commit(ctx)
}

func (b *Book) DeleteStudent(ctx context.Context, classID, studentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci := b.classIndex(classID)
	if ci < 0 {
		return ErrClassNotFound
	}
	si := b.studentIndex(ci, studentID)
	if si < 0 {
		return ErrStudentNotFound
	}
	students := b.classes[ci].Students
	b.classes[ci].Students = append(students[:si], students[si+1:]...)
	return b.commit(ctx)
}

// ReorderStudents moves the student at index `from` to index `to` within a class.
func (b *Book) ReorderStudents(ctx context.Context, classID string, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci := b.classIndex(classID)
	if ci < 0 {
		return ErrClassNotFound
	}
	students, err := move(b.classes[ci].Students, from, to)
	if err != nil {
		return err
	}
	b.classes[ci].Students = students
	return b.commit(ctx)
}

func (b *Book) newStudent(name string) Student {
	scores := make(Scores, len(b.criteria))
	for _, c := range b.criteria {
		scores[c.ID] = 0
	}
	return Student{
		ID:        newID(),
		Name:      core.CleanString(name),
		Scores:    scores,
		Total:     0,
		CreatedAt: core.NowFunc(),
	}
}
