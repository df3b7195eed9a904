// Package classify derives language, seniority and work-mode labels from
// posting text using keyword heuristics. These are documented approximations,
// not statistical models.
package classify

import (
	"regexp"

	"applyflow-engine/internal/domain"
)

// Small fixed sets of function words. Word-boundary matches only, so "die"
// inside "studied" doesn't count.
var (
	germanWords  = []string{"und", "der", "die", "das", "mit", "für", "wir", "sie", "eine", "nicht", "von", "bei", "werden", "sind"}
	englishWords = []string{"the", "and", "with", "for", "you", "our", "are", "will", "this", "have", "from", "work", "team", "your"}
)

var wordRes = map[string]*regexp.Regexp{}

func init() {
	for _, w := range append(append([]string{}, germanWords...), englishWords...) {
		wordRes[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
}

// Language counts German vs English function words in the description.
// German wins on a strictly greater count; ties favor English. Coarse, but
// good enough to pick a letter template.
func Language(description string) domain.Language {
	var de, en int
	for _, w := range germanWords {
		de += len(wordRes[w].FindAllStringIndex(description, -1))
	}
	for _, w := range englishWords {
		en += len(wordRes[w].FindAllStringIndex(description, -1))
	}
	if de > en {
		return domain.LanguageGerman
	}
	return domain.LanguageEnglish
}

// Ordered tiers; the first tier with a hit wins. A title carrying both
// "senior" and "junior" terms therefore resolves to senior. Precedence,
// not scoring. Whole-word matches only, so "intern" inside "international"
// or "lead" inside "leadership" doesn't count.
var (
	executiveRes = compileTerms(
		"head of", "director", "vice president", "vp", "chief",
		"cto", "ceo", "cfo", "coo", "geschäftsführer", "bereichsleiter",
	)
	seniorRes = compileTerms(
		"senior", "sr", "lead", "principal", "manager", "architect",
		"staff engineer", "teamleiter", "expert",
	)
	juniorRes = compileTerms(
		"junior", "entry level", "entry-level", "trainee", "intern",
		"praktikant", "werkstudent", "working student", "graduate",
		"berufseinsteiger", "ausbildung",
	)
)

func compileTerms(terms ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return res
}

// Seniority checks title+description against the ordered tiers, defaulting
// to mid when nothing matches.
func Seniority(title, description string) domain.Seniority {
	blob := title + " " + description

	switch {
	case matchesAny(blob, executiveRes):
		return domain.SeniorityExecutive
	case matchesAny(blob, seniorRes):
		return domain.SenioritySenior
	case matchesAny(blob, juniorRes):
		return domain.SeniorityJunior
	default:
		return domain.SeniorityMid
	}
}

func matchesAny(blob string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(blob) {
			return true
		}
	}
	return false
}

// WorkModeOrDefault applies the onsite default once normalization has had
// its chance and the mode is still unset.
func WorkModeOrDefault(mode domain.WorkMode) domain.WorkMode {
	if mode == domain.WorkModeUnknown {
		return domain.WorkModeOnsite
	}
	return mode
}
