package extract

import (
	"regexp"
	"strings"
)

// Ordered label patterns for reference/requisition numbers; the first label
// that matches wins. Case-insensitive, German labels first since those
// dominate the supported boards.
var referenceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bReferenznummer\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bReferenz-?Nr\.?\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bKennziffer\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bStellen-?ID\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bJob-?ID\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bReference\s+number\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bRequisition\s+ID\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
	regexp.MustCompile(`(?i)\bReq\.?\s*ID\s*[:.]?\s*([A-Z0-9][A-Z0-9./_-]*)`),
}

// FindReference scans free text for a reference/requisition number.
func FindReference(text string) string {
	for _, re := range referenceRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.Trim(m[1], ".")
		}
	}
	return ""
}

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var emailBlocklist = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"@example.", "placeholder", "@domain.",
}

// FindContactEmail returns the first address that isn't an obvious
// placeholder or noreply sender.
func FindContactEmail(text string) string {
	for _, m := range emailRe.FindAllString(text, -1) {
		low := strings.ToLower(m)
		blocked := false
		for _, b := range emailBlocklist {
			if strings.Contains(low, b) {
				blocked = true
				break
			}
		}
		if !blocked {
			return m
		}
	}
	return ""
}

var phoneRe = regexp.MustCompile(`\+?\d[\d\s()/.-]{6,}\d`)

// minPhoneDigits keeps dates ("01.02.2024" has 8 digits) and years out.
const minPhoneDigits = 9

// FindContactPhone scans for a digit-grouping pattern with enough digits to
// plausibly be a phone number.
func FindContactPhone(text string) string {
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= minPhoneDigits {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

var contactNameRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAnsprechpartner(?:in)?\s*[:]\s*([\p{L}][\p{L}.\- ]{2,60})`),
	regexp.MustCompile(`(?i)\bIhr(?:e)?\s+Kontakt\s*[:]\s*([\p{L}][\p{L}.\- ]{2,60})`),
	regexp.MustCompile(`(?i)\bContact\s*[:]\s*([\p{L}][\p{L}.\- ]{2,60})`),
}

// FindContactName pulls a contact person from labeled text, cutting at the
// first line break.
func FindContactName(text string) string {
	for _, re := range contactNameRes {
		if m := re.FindStringSubmatch(text); m != nil {
			name := m[1]
			if i := strings.IndexAny(name, "\n\r"); i >= 0 {
				name = name[:i]
			}
			return strings.TrimSpace(name)
		}
	}
	return ""
}
