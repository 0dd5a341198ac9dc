package roster

import (
	"math"

	"github.com/trezcool/scorebook/core/rubric"
)

type (
	ClassStat struct {
		ClassID      string `json:"classId"`
		Name         string `json:"name"`
		StudentCount int    `json:"studentCount"`
		Average      int    `json:"average"`
	}

	CriterionStat struct {
		CriterionID string  `json:"criterionId"`
		Name        string  `json:"name"`
		Icon        string  `json:"icon"`
		MaxScore    int     `json:"maxScore"`
		Average     float64 `json:"average"` // one decimal
		Percentage  int     `json:"percentage"`
	}

	Statistics struct {
		ClassCount        int             `json:"classCount"`
		StudentCount      int             `json:"studentCount"`
		MaxTotal          int             `json:"maxTotal"`
		OverallAverage    int             `json:"overallAverage"`
		OverallPercentage int             `json:"overallPercentage"`
		Classes           []ClassStat     `json:"classes"`  // only classes with students
		Criteria          []CriterionStat `json:"criteria"` // empty without students
	}
)

// Statistics computes averages over every student of the book.
func (b *Book) Statistics() Statistics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return computeStatistics(b.classes, b.criteria)
}

func computeStatistics(classes []Class, criteria []rubric.Criterion) Statistics {
	stats := Statistics{
		ClassCount: len(classes),
		MaxTotal:   rubric.MaxTotal(criteria),
		Classes:    []ClassStat{},
		Criteria:   []CriterionStat{},
	}

	var grandTotal int
	for _, c := range classes {
		if len(c.Students) == 0 {
			continue
		}
		var total int
		for _, s := range c.Students {
			total += s.Total
		}
		grandTotal += total
		stats.StudentCount += len(c.Students)
		stats.Classes = append(stats.Classes, ClassStat{
			ClassID:      c.ID,
			Name:         c.Name,
			StudentCount: len(c.Students),
			Average:      int(round(float64(total) / float64(len(c.Students)))),
		})
	}
	if stats.StudentCount == 0 {
		return stats
	}

	for _, crit := range criteria {
		var sum int
		for _, c := range classes {
			for _, s := range c.Students {
				sum += s.Scores[crit.ID]
			}
		}
		avg := float64(sum) / float64(stats.StudentCount)
		stat := CriterionStat{
			CriterionID: crit.ID,
			Name:        crit.Name,
			Icon:        crit.Icon,
			MaxScore:    crit.MaxScore,
			Average:     round(avg*10) / 10,
		}
		if crit.MaxScore > 0 {
			stat.Percentage = int(round(avg / float64(crit.MaxScore) * 100))
		}
		stats.Criteria = append(stats.Criteria, stat)
	}

	overall := round(float64(grandTotal) / float64(stats.StudentCount))
	stats.OverallAverage = int(overall)
	if stats.MaxTotal > 0 {
		stats.OverallPercentage = int(round(overall / float64(stats.MaxTotal) * 100))
	}
	return stats
}

// round rounds half up, so -0.5 becomes 0 and 2.5 becomes 3.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
