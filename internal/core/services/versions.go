package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// VersionComparator orders two version labels ascending, returning a
// negative number when a sorts before b, zero when equal and a positive
// number otherwise.
type VersionComparator func(a, b string) int

// LexicographicVersions compares labels byte-wise, so "10" sorts before "2".
func LexicographicVersions(a, b string) int {
	return strings.Compare(a, b)
}

// NumericAwareVersions compares labels by value when both parse as numbers
// and byte-wise otherwise, so "2" sorts before "10".
func NumericAwareVersions(a, b string) int {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	}
	return strings.Compare(a, b)
}

// ComparatorFor returns the comparator selected by order.
// Unknown orders fall back to LexicographicVersions.
func ComparatorFor(order domain.VersionOrder) VersionComparator {
	if order == domain.VersionOrderNumeric {
		return NumericAwareVersions
	}
	return LexicographicVersions
}

// SummarizeVersions groups a prompt's history by ContextVersion.
//
// Empty versions are reported as domain.UnknownVersion. ModifiedOn and
// ModifiedBy come from the first context of each version in input order.
// Summaries are ordered newest version first using NumericAwareVersions.
func SummarizeVersions(history []domain.Context) []domain.VersionSummary {
	index := make(map[string]int)
	summaries := make([]domain.VersionSummary, 0)

	for _, c := range history {
		v := c.ContextVersion
		if v == "" {
			v = domain.UnknownVersion
		}
		i, ok := index[v]
		if !ok {
			i = len(summaries)
			index[v] = i
			summaries = append(summaries, domain.VersionSummary{
				Version:    v,
				ModifiedOn: c.ModifiedOn,
				ModifiedBy: c.ModifiedBy,
			})
		}
		summaries[i].Count++
		summaries[i].Contexts = append(summaries[i].Contexts, c)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return NumericAwareVersions(summaries[i].Version, summaries[j].Version) > 0
	})
	return summaries
}
