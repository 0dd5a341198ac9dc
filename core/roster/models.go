package roster

import (
	"time"

	"github.com/trezcool/scorebook/core/rubric"
)

// Scores maps a criterion id to the points a student earned for it.
type Scores map[string]int

// Sum adds up every entry.
func (s Scores) Sum() int {
	var total int
	for _, v := range s {
		total += v
	}
	return total
}

func (s Scores) clone() Scores {
	c := make(Scores, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

type Student struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Scores    Scores    `json:"scores" yaml:"scores"`
	Total     int       `json:"total" yaml:"total"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func (s Student) clone() Student {
	s.Scores = s.Scores.clone()
	return s
}

type Class struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Students  []Student `json:"students" yaml:"students"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func (c Class) clone() Class {
	students := make([]Student, 0, len(c.Students))
	for _, s := range c.Students {
		students = append(students, s.clone())
	}
	c.Students = students
	return c
}

// Snapshot is the complete persisted state of one scope.
// A nil Criteria means "use the built-in defaults".
type Snapshot struct {
	Classes  []Class            `json:"classes" yaml:"classes"`
	Criteria []rubric.Criterion `json:"criteria" yaml:"criteria"`
}

// NewSnapshot returns the empty snapshot created at signup: no classes and default criteria.
func NewSnapshot() Snapshot {
	return Snapshot{Classes: []Class{}}
}

// DefaultSnapshot returns the empty snapshot with the default criteria spelled out.
func DefaultSnapshot() Snapshot {
	return Snapshot{Classes: []Class{}, Criteria: rubric.Defaults()}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	classes := make([]Class, 0, len(s.Classes))
	for _, c := range s.Classes {
		classes = append(classes, c.clone())
	}
	return Snapshot{Classes: classes, Criteria: rubric.Clone(s.Criteria)}
}

// StudentCount counts the students of every class.
func (s Snapshot) StudentCount() int {
	var n int
	for _, c := range s.Classes {
		n += len(c.Students)
	}
	return n
}

// CriterionUpdate holds the criterion fields to change; nil fields are left untouched.
type CriterionUpdate struct {
	Name     *string
	MaxScore *int
	Icon     *string
}
