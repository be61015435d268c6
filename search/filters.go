package search

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/seeker/core"
)

// Well-known filter keys. Any other key falls back to strict equality
// against the like-named free-form facet field.
const (
	filterLocation        = "location"
	filterMinSalary       = "minSalary"
	filterExperienceYears = "experienceYears"
	filterCompanySize     = "companySize"
)

// experienceTolerance allows documents asking for slightly more experience
// than requested to still match.
const experienceTolerance = 1

var firstInteger = regexp.MustCompile(`[0-9]+`)

// matchesFilters evaluates every facet predicate against doc. Filtered-out
// documents never enter any strategy's candidate set. A malformed filter
// value is logged and excludes nothing, so one bad predicate degrades rather
// than empties the result.
func matchesFilters(doc *core.Document, filters map[string]string, logger *slog.Logger) bool {
	for key, value := range filters {
		switch key {
		case filterLocation:
			if !strings.Contains(strings.ToLower(doc.Location), strings.ToLower(value)) {
				return false
			}
		case filterMinSalary:
			want, err := strconv.Atoi(value)
			if err != nil {
				logger.Warn("ignoring malformed minSalary filter", "value", value, "err", err)
				continue
			}
			got, ok := parseSalary(doc.Salary)
			if !ok || got < want {
				return false
			}
		case filterExperienceYears:
			want, err := strconv.Atoi(value)
			if err != nil {
				logger.Warn("ignoring malformed experienceYears filter", "value", value, "err", err)
				continue
			}
			if doc.ExperienceYears > want+experienceTolerance {
				return false
			}
		case filterCompanySize:
			if doc.CompanySize != value {
				return false
			}
		default:
			if doc.Facets[key] != value {
				return false
			}
		}
	}
	return true
}

// parseSalary extracts the first integer from a salary string such as
// "$120,000 - $150,000". Thousands separators are stripped before matching.
func parseSalary(salary string) (int, bool) {
	cleaned := strings.ReplaceAll(salary, ",", "")
	match := firstInteger.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
