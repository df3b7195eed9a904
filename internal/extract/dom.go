package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"applyflow-engine/internal/normalize"
)

// applyDOM fills every field still empty after the structured pass by
// probing the source's marker selectors. Per-field and independent: partial
// structured data plus partial DOM data merge without overwriting.
func applyDOM(rp *RawPosting, doc *goquery.Document, strat Strategy, pageURL string) {
	if rp.JobTitle == "" {
		rp.JobTitle = firstText(doc, strat.Markers[FieldTitle])
	}
	if rp.CompanyName == "" {
		rp.CompanyName = firstText(doc, strat.Markers[FieldCompany])
	}
	if rp.Location == "" {
		rp.Location = firstText(doc, strat.Markers[FieldLocation])
	}
	if rp.Location == "" {
		rp.Location = labeledLocation(doc)
	}
	if rp.PublicationDate == "" {
		rp.PublicationDate = firstDate(doc, strat.Markers[FieldPostedDate])
	}
	if rp.WorkModeText == "" {
		rp.WorkModeText = firstText(doc, strat.Markers[FieldWorkMode])
	}
	if rp.Description == "" {
		rp.Description = descriptionText(doc)
	}
	if rp.DirectApplyLink == "" {
		rp.DirectApplyLink = applyLink(doc, strat, pageURL)
	}
	if rp.CareerPageLink == "" {
		rp.CareerPageLink = careerLink(doc, strat, pageURL)
	}
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if strings.HasPrefix(sel, "meta") {
			if v, ok := s.Attr("content"); ok {
				if t := normalize.CleanText(v); t != "" {
					return t
				}
			}
			continue
		}
		if t := normalize.CleanText(s.Text()); t != "" {
			return t
		}
	}
	return ""
}

func firstDate(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if v, ok := s.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if t := normalize.CleanText(s.Text()); t != "" {
			return t
		}
	}
	return ""
}

var descriptionSelectors = []string{
	`[data-at="job-ad-content"]`,
	`[data-testid="job-description"]`,
	`[itemprop="description"]`,
	".job-description",
	"#job-description",
	"article",
	"main",
}

func descriptionText(doc *goquery.Document) string {
	for _, sel := range descriptionSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if t := collapseBlock(s.Text()); t != "" {
			return t
		}
	}
	return collapseBlock(doc.Find("body").Text())
}

// applyLink accepts a direct-apply href only when it doesn't point back
// into the board's own redirect path.
func applyLink(doc *goquery.Document, strat Strategy, pageURL string) string {
	for _, sel := range strat.Markers[FieldApplyLink] {
		href, ok := doc.Find(sel).First().Attr("href")
		if !ok {
			continue
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		abs := resolveHref(pageURL, href)
		if strat.IsApplyRedirect(abs) {
			continue
		}
		return abs
	}
	return ""
}

// careerLink is a best-effort guess at the employer's careers page: the
// first anchor whose href or label mentions karriere/career and that does
// not point back into the board itself.
func careerLink(doc *goquery.Document, strat Strategy, pageURL string) string {
	var out string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return true
		}
		low := strings.ToLower(href + " " + s.Text())
		if !strings.Contains(low, "karriere") && !strings.Contains(low, "career") {
			return true
		}
		abs := resolveHref(pageURL, href)
		if strat.IsBoardHost(abs) {
			return true
		}
		out = abs
		return false
	})
	return out
}

func resolveHref(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// labeledLocation falls back to "Location:"-style labels in meta
// descriptions or plain page text when no marker element carried one.
func labeledLocation(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := locationFromLabeledText(v); loc != "" {
			return loc
		}
	}
	return locationFromLabeledText(doc.Find("body").Text())
}

var locationLabels = []string{
	"standort:",
	"arbeitsort:",
	"einsatzort:",
	"location:",
	"job location:",
}

func locationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	for _, lab := range locationLabels {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := strings.TrimSpace(s[i+len(lab):])

		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}

		rest = normalize.CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}

// collapseBlock keeps line breaks (they matter for the free-text scans and
// letter prompts) but squeezes the whitespace inside each line.
func collapseBlock(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if t := normalize.CleanText(ln); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
