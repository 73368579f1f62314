package payroll

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
)

func normalizeSearch(value string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(value)))
}

// matchesSearch compares name and position ignoring case and accents.
func matchesSearch(employee Employee, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(normalizeSearch(employee.Name), query) ||
		strings.Contains(normalizeSearch(employee.Position), query)
}

func sortRows(rows []SummaryRow, sortBy, order string) {
	var compare func(a, b SummaryRow) int
	switch sortBy {
	case SortByPosition:
		compare = func(a, b SummaryRow) int {
			return strings.Compare(normalizeSearch(a.Employee.Position), normalizeSearch(b.Employee.Position))
		}
	case SortByNetPay:
		compare = func(a, b SummaryRow) int {
			return cmp.Compare(a.Calculation.NetPay, b.Calculation.NetPay)
		}
	default:
		compare = func(a, b SummaryRow) int {
			return strings.Compare(normalizeSearch(a.Employee.Name), normalizeSearch(b.Employee.Name))
		}
	}
	desc := order == OrderDesc
	slices.SortStableFunc(rows, func(a, b SummaryRow) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.Employee.ID, b.Employee.ID)
		}
		return c
	})
}

// UniqueNames renames documents whose file names collide within one batch.
// The first keeps its name; later ones get "_2", "_3", ... before ".pdf".
func UniqueNames(docs []Document) {
	seen := make(map[string]int, len(docs))
	for i := range docs {
		name := docs[i].FileName
		seen[name]++
		if seen[name] == 1 {
			continue
		}
		stem := strings.TrimSuffix(name, ".pdf")
		for n := seen[name]; ; n++ {
			candidate := stem + "_" + strconv.Itoa(n) + ".pdf"
			if seen[candidate] == 0 {
				seen[candidate] = 1
				seen[name] = n
				docs[i].FileName = candidate
				break
			}
		}
	}
}
