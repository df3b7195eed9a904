package normalize

import (
	"regexp"
	"strings"

	"applyflow-engine/internal/domain"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// German postings suffix titles with gender markers in a handful of
// spellings. Parenthesized forms first so the bare forms don't leave
// empty parens behind.
var genderMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(\s*(?:m|w|f|d|x|gn)(?:\s*/\s*(?:m|w|f|d|x|gn)){1,2}\s*\)`),
	regexp.MustCompile(`(?i)\(\s*(?:all genders?|gn\*?|m/w/divers)\s*\)`),
	regexp.MustCompile(`(?i)\b(?:m|w|f)\s*/\s*(?:m|w|f|d)\s*/\s*(?:d|x|divers)\b`),
	regexp.MustCompile(`(?i)\ball genders\b`),
}

// CleanTitle strips gender-marker suffixes, collapses whitespace and trims
// dangling separators. Cleaning an already-clean title returns it unchanged.
func CleanTitle(title string) string {
	t := title
	for _, re := range genderMarkerRes {
		t = re.ReplaceAllString(t, " ")
	}
	t = CleanText(t)
	t = strings.Trim(t, "-–|, ")
	return CleanText(t)
}

// SplitAddress shapes raw address parts for letter templates:
// line1 is the street (empty, not null, when absent), line2 joins postal
// code and locality with a single space and no dangling separator.
func SplitAddress(street, postalCode, locality string) (line1, line2 string) {
	line1 = CleanText(street)

	parts := make([]string, 0, 2)
	if p := CleanText(postalCode); p != "" {
		parts = append(parts, p)
	}
	if l := CleanText(locality); l != "" {
		parts = append(parts, l)
	}
	line2 = strings.Join(parts, " ")
	return line1, line2
}

// ComposeAddress builds the single-string form from the split lines.
func ComposeAddress(line1, line2 string) string {
	switch {
	case line1 == "":
		return line2
	case line2 == "":
		return line1
	default:
		return line1 + ", " + line2
	}
}

var remoteTerms = []string{
	"remote", "home office", "homeoffice", "home-office",
	"mobiles arbeiten", "mobile work", "telecommute", "100% home",
}

var hybridTerms = []string{
	"hybrid", "teilweise", "tageweise", "partly", "2-3 tage", "flexibel",
}

// WorkModeFromText maps a free-text work-type description onto the
// canonical tri-state. No descriptor at all leaves the mode unset; the
// onsite default is applied later, at classification time.
func WorkModeFromText(text string) domain.WorkMode {
	blob := strings.ToLower(CleanText(text))
	if blob == "" {
		return domain.WorkModeUnknown
	}

	remote := containsAny(blob, remoteTerms)
	hybrid := containsAny(blob, hybridTerms)

	switch {
	case remote && hybrid:
		return domain.WorkModeHybrid
	case remote:
		return domain.WorkModeRemote
	default:
		return domain.WorkModeOnsite
	}
}

func containsAny(blob string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(blob, t) {
			return true
		}
	}
	return false
}
