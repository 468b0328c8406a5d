package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openelig/eligibility-tracker/constants"
)

// centuryCutoff maps two-digit years: values below it land in the 2000s,
// everything else in the 1900s.
const centuryCutoff = 30

var (
	reNumericDate = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)
	reISODate     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reMonthDate   = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)[\s.\-]*(\d{1,2}),?\s*(\d{4})\b`)
	reDigits      = regexp.MustCompile(`\D`)
	reCodeToken   = regexp.MustCompile(`^\d{3,6}$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate parses a captured date-like span into the canonical
// YYYY-MM-DD form. Numeric dates with ambiguous separators are read
// month-first; day-first is only used when the first number cannot be a
// month. Unparsable input yields "" rather than a guess.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return formatDate(year, month, day)
	}
	if m := reNumericDate.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) <= 2 {
			year = expandCentury(year)
		}
		month, day := a, b
		if a > 12 && b <= 12 {
			month, day = b, a
		}
		return formatDate(year, month, day)
	}
	if m := reMonthDate.FindStringSubmatch(s); m != nil {
		prefix := strings.ToLower(m[1])
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		month, ok := monthsByPrefix[prefix]
		if !ok {
			return ""
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return formatDate(year, int(month), day)
	}
	return ""
}

func expandCentury(yy int) int {
	if yy < centuryCutoff {
		return 2000 + yy
	}
	return 1900 + yy
}

func formatDate(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflow like Feb 30, which time.Date silently normalizes
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// NormalizeZip strips a captured ZIP to digits and validates the length.
// Invalid lengths keep the raw capture so operators can see what failed.
func NormalizeZip(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	digits := reDigits.ReplaceAllString(s, "")
	if len(digits) == 5 || len(digits) == 9 {
		return digits
	}
	return s
}

// NormalizeName trims and collapses internal whitespace. Case is preserved:
// OCR casing is sometimes itself diagnostic.
func NormalizeName(s string) string {
	return compact(s)
}

// NormalizeStatus maps status phrasing onto the canonical member statuses.
// Unrecognized status text is kept as captured.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "term"):
		return string(constants.MemberStatusTerminated)
	case strings.Contains(lower, "inactiv"):
		return string(constants.MemberStatusInactive)
	case strings.Contains(lower, "activ"):
		return string(constants.MemberStatusActive)
	}
	return s
}

// NormalizePlan maps plan shorthand onto canonical plan names. Unrecognized
// plan text is kept as captured.
func NormalizePlan(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "hmo"):
		return constants.PlanHMO
	case strings.Contains(lower, "ppo"):
		return constants.PlanPPO
	case strings.Contains(lower, "epo"):
		return constants.PlanEPO
	case strings.Contains(lower, "medicare"), strings.Contains(lower, "medadv"), strings.Contains(lower, "med adv"):
		return constants.PlanMedicareAdv
	case strings.Contains(lower, "commercial"), lower == "comm":
		return constants.PlanCommercial
	}
	return s
}

// NormalizeCodes splits a captured code list and rejoins it comma-separated
// in discovery order. Duplicates are kept: frequency may be meaningful
// downstream.
func NormalizeCodes(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	raw := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == ' ' || r == '\t'
	})
	var codes []string
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if reCodeToken.MatchString(c) {
			codes = append(codes, c)
		}
	}
	return strings.Join(codes, ", ")
}
