// Package rubric defines scoring criteria and the rules applied to their maximum scores.
package rubric

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	MinMaxScore     = 1
	MaxMaxScore     = 100
	DefaultMaxScore = 10
	DefaultIcon     = "📌"
)

// Default criterion ids
const (
	KitapDefter   = "kitap_defter"
	Odevler       = "odevler"
	DuaEzberi     = "dua_ezberi"
	DerseKatilim  = "derse_katilim"
	Davranis      = "davranis"
	DefterKontrol = "defter_kontrol"
)

type Criterion struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	MaxScore int    `json:"maxScore" yaml:"maxScore"`
	Icon     string `json:"icon" yaml:"icon"`
}

// Defaults returns a fresh copy of the built-in criteria (max total 100).
func Defaults() []Criterion {
	return []Criterion{
		{ID: KitapDefter, Name: "Kitap/Defter Getirme", MaxScore: 10, Icon: "📚"},
		{ID: Odevler, Name: "Ödevler", MaxScore: 20, Icon: "📝"},
		{ID: DuaEzberi, Name: "Dua Ezberi", MaxScore: 10, Icon: "🤲"},
		{ID: DerseKatilim, Name: "Derse Katılım", MaxScore: 20, Icon: "🙋"},
		{ID: Davranis, Name: "Davranış", MaxScore: 20, Icon: "⭐"},
		{ID: DefterKontrol, Name: "Defter Kontrol", MaxScore: 20, Icon: "✅"},
	}
}

// ClampMaxScore bounds a max score to [MinMaxScore, MaxMaxScore].
func ClampMaxScore(n int) int {
	if n < MinMaxScore {
		return MinMaxScore
	}
	if n > MaxMaxScore {
		return MaxMaxScore
	}
	return n
}

// NormalizeMaxScore treats 0 as "not provided" (DefaultMaxScore) and clamps the rest.
func NormalizeMaxScore(n int) int {
	if n == 0 {
		return DefaultMaxScore
	}
	return ClampMaxScore(n)
}

// ParseMaxScore reads the leading integer of `s` ("12pts" -> 12, " -3" -> -3)
// and normalizes it. Input without a leading integer yields DefaultMaxScore.
func ParseMaxScore(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return DefaultMaxScore
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil { // overflow
		if s[0] == '-' {
			return MinMaxScore
		}
		return MaxMaxScore
	}
	return NormalizeMaxScore(n)
}

// MaxTotal is the sum of the criteria max scores.
func MaxTotal(criteria []Criterion) int {
	var total int
	for _, c := range criteria {
		total += c.MaxScore
	}
	return total
}

// Find returns the criterion with the given id.
func Find(criteria []Criterion, id string) (Criterion, bool) {
	for _, c := range criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Clone copies a criteria slice; nil stays nil.
func Clone(criteria []Criterion) []Criterion {
	if criteria == nil {
		return nil
	}
	return append(make([]Criterion, 0, len(criteria)), criteria...)
}
