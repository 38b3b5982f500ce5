// Package dashboard buckets legacy case-status strings into a small set
// of categories for the summary counts. Matching is case- and
// diacritic-insensitive because the legacy data mixes "Em Andamento",
// "em andamento" and "EM ANDAMENTO" freely.
package dashboard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"npj/models"
)

type Category string

const (
	CategoryActive    Category = "active"
	CategoryAwaiting  Category = "awaiting"
	CategoryFinalized Category = "finalized"
	CategoryArchived  Category = "archived"
	CategorySuspended Category = "suspended"
	CategoryOther     Category = "other"
)

// Summary holds one count per category. The bucket counts always sum to
// the number of input records.
type Summary struct {
	Active    int `json:"active"`
	Awaiting  int `json:"awaiting"`
	Finalized int `json:"finalized"`
	Archived  int `json:"archived"`
	Suspended int `json:"suspended"`
	Other     int `json:"other"`
	Total     int `json:"total"`
}

// Normalize lowercases, trims and strips combining marks, so "Em Análise"
// and "em analise" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Categorize assigns a status string to exactly one bucket. Substring
// order matters: "arquivado" and "suspenso" are checked before the
// finalized/active words so compound labels land in the narrower bucket.
func Categorize(status string) Category {
	n := Normalize(status)
	switch {
	case strings.Contains(n, "arquiv"):
		return CategoryArchived
	case strings.Contains(n, "suspen"):
		return CategorySuspended
	case strings.Contains(n, "aguard"), strings.Contains(n, "pendente"),
		strings.Contains(n, "analise"):
		return CategoryAwaiting
	case strings.Contains(n, "finaliz"), strings.Contains(n, "conclu"),
		strings.Contains(n, "encerr"):
		return CategoryFinalized
	case strings.Contains(n, "andamento"), strings.Contains(n, "ativo"),
		strings.Contains(n, "aberto"), strings.Contains(n, "tramit"):
		return CategoryActive
	default:
		return CategoryOther
	}
}

// IsConcluded reports whether a case status means no new events may be
// scheduled against it.
func IsConcluded(status string) bool {
	switch Categorize(status) {
	case CategoryFinalized, CategoryArchived:
		return true
	}
	return false
}

// Aggregate buckets every record; nothing is dropped or double-counted.
func Aggregate(cases []models.Case) Summary {
	var s Summary
	for _, cs := range cases {
		switch Categorize(cs.Status) {
		case CategoryActive:
			s.Active++
		case CategoryAwaiting:
			s.Awaiting++
		case CategoryFinalized:
			s.Finalized++
		case CategoryArchived:
			s.Archived++
		case CategorySuspended:
			s.Suspended++
		default:
			s.Other++
		}
	}
	s.Total = len(cases)
	return s
}
