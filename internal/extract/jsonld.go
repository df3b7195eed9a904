package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"applyflow-engine/internal/domain"
	"applyflow-engine/internal/normalize"
)

// findJobPostingLD scans the ld+json script blocks for the first object with
// @type JobPosting, descending into @graph wrappers and top-level arrays.
// Malformed JSON is skipped silently: absent structured data is an expected
// condition, not a failure.
func findJobPostingLD(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true // keep scanning
		}
		if jp := jobPostingIn(v); jp != nil {
			found = jp
			return false
		}
		return true
	})
	return found
}

func jobPostingIn(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if hasType(t, "JobPosting") {
			return t
		}
		if g, ok := t["@graph"]; ok {
			return jobPostingIn(g)
		}
	case []any:
		for _, el := range t {
			if jp := jobPostingIn(el); jp != nil {
				return jp
			}
		}
	}
	return nil
}

func hasType(m map[string]any, want string) bool {
	switch t := m["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

// applyJSONLD maps the structured object onto the raw posting. Structured
// data is the highest-confidence source, so it fills unconditionally; the
// DOM fallback later only touches fields still empty.
func applyJSONLD(rp *RawPosting, jp map[string]any, strat Strategy) {
	rp.JobTitle = ldString(jp, "title")
	rp.PublicationDate = ldString(jp, "datePosted")
	rp.Description = htmlToText(ldString(jp, "description"))

	if org, ok := jp["hiringOrganization"].(map[string]any); ok {
		rp.CompanyName = ldString(org, "name")
		if u := ldString(org, "url"); u != "" && !strat.IsBoardHost(u) {
			rp.WebsiteLink = u
		} else if u := ldString(org, "sameAs"); u != "" && !strat.IsBoardHost(u) {
			rp.WebsiteLink = u
		}
	}

	if addr := firstLocationAddress(jp["jobLocation"]); addr != nil {
		rp.Street = ldString(addr, "streetAddress")
		rp.PostalCode = ldString(addr, "postalCode")
		rp.Locality = ldString(addr, "addressLocality")
		if rp.Locality != "" {
			rp.Location = rp.Locality
		} else {
			rp.Location = ldString(addr, "addressRegion")
		}
	}

	// identifier may be a bare string or a PropertyValue object
	switch id := jp["identifier"].(type) {
	case string:
		if v := strings.TrimSpace(id); v != "" {
			rp.SourceJobID = v
		}
	case map[string]any:
		if v := ldString(id, "value"); v != "" {
			rp.SourceJobID = v
		}
	}

	if jwt := ldString(jp, "jobLocationType"); strings.EqualFold(jwt, "TELECOMMUTE") {
		rp.WorkModeText = "remote"
	}
	// employmentType is a FULL_TIME/PART_TIME vocabulary, not a workplace
	// descriptor. Taking it verbatim would pin the mode to onsite and mask
	// remote hints in the description, so only an explicit remote or hybrid
	// signal inside it counts.
	if et := ldString(jp, "employmentType"); et != "" && rp.WorkModeText == "" {
		switch normalize.WorkModeFromText(et) {
		case domain.WorkModeRemote, domain.WorkModeHybrid:
			rp.WorkModeText = et
		}
	}
}

func firstLocationAddress(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if addr, ok := t["address"].(map[string]any); ok {
			return addr
		}
		// some boards inline the PostalAddress directly
		if hasType(t, "PostalAddress") {
			return t
		}
	case []any:
		for _, el := range t {
			if addr := firstLocationAddress(el); addr != nil {
				return addr
			}
		}
	}
	return nil
}

func ldString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
