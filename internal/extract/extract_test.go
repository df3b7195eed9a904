package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"applyflow-engine/internal/fetch"
)

func newTestExtractor() *Extractor {
	c := fetch.NewClient(fetch.Config{
		Timeout:     5 * time.Second,
		MaxRetries:  0,
		HostReqsSec: 1000,
		HostBurst:   1000,
	}, zap.NewNop().Sugar())
	return New(c, zap.NewNop().Sugar())
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const structuredPage = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "JobPosting",
  "title": "Senior Python Developer (m/w/d)",
  "datePosted": "2024-03-01",
  "description": "<p>Wir suchen eine erfahrene Entwicklerin.</p><p>Referenznummer: XYZ-999</p>",
  "hiringOrganization": {"@type": "Organization", "name": "Acme GmbH", "url": "https://www.acme.de"},
  "jobLocation": {"@type": "Place", "address": {"@type": "PostalAddress",
    "streetAddress": "Musterstraße 12", "postalCode": "10115", "addressLocality": "Berlin"}},
  "identifier": {"@type": "PropertyValue", "value": "ACME-42"}
}
</script></head><body><h1>ignored</h1></body></html>`

func TestExtractStructured(t *testing.T) {
	srv := servePage(t, structuredPage)

	rp, err := newTestExtractor().Extract(context.Background(), srv.URL+"/job/1234567.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rp.JobTitle != "Senior Python Developer (m/w/d)" {
		t.Errorf("title = %q", rp.JobTitle)
	}
	if rp.CompanyName != "Acme GmbH" {
		t.Errorf("company = %q", rp.CompanyName)
	}
	if rp.Street != "Musterstraße 12" || rp.PostalCode != "10115" || rp.Locality != "Berlin" {
		t.Errorf("address = %q %q %q", rp.Street, rp.PostalCode, rp.Locality)
	}
	if rp.PublicationDate != "2024-03-01" {
		t.Errorf("datePosted = %q", rp.PublicationDate)
	}
	if rp.WebsiteLink != "https://www.acme.de" {
		t.Errorf("website = %q", rp.WebsiteLink)
	}
	if rp.SourceJobID != "ACME-42" {
		t.Errorf("source job id = %q", rp.SourceJobID)
	}
	if rp.Reference != "XYZ-999" {
		t.Errorf("reference = %q", rp.Reference)
	}
}

const domOnlyPage = `<html><body>
<h1>Senior Python Developer (m/w/d)</h1>
<div class="company-name">Acme GmbH</div>
<div class="job-location">Berlin</div>
<div class="job-description">
<p>Wir suchen eine erfahrene Entwicklerin.</p>
<p>Referenznummer: XYZ-999</p>
<p>Fragen an jobs@acme.de oder +49 30 1234567</p>
</div>
</body></html>`

func TestExtractDOMFallback(t *testing.T) {
	srv := servePage(t, domOnlyPage)

	rp, err := newTestExtractor().Extract(context.Background(), srv.URL+"/jobs?id=555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.JobTitle != "Senior Python Developer (m/w/d)" {
		t.Errorf("title = %q", rp.JobTitle)
	}
	if rp.CompanyName != "Acme GmbH" {
		t.Errorf("company = %q", rp.CompanyName)
	}
	if rp.Reference != "XYZ-999" {
		t.Errorf("reference = %q", rp.Reference)
	}
	if rp.ContactEmail != "jobs@acme.de" {
		t.Errorf("email = %q", rp.ContactEmail)
	}
	if rp.ContactPhone == "" {
		t.Errorf("phone not found")
	}
	if rp.SourceJobID != "555" {
		t.Errorf("source job id = %q", rp.SourceJobID)
	}
}

// Partial structured data plus partial DOM data must merge without the DOM
// pass overwriting structured fields.
const partialPage = `<html><head>
<script type="application/ld+json">
{"@type": "JobPosting", "title": "Data Engineer"}
</script></head><body>
<h1>Wrong Title From H1</h1>
<div class="company-name">Beta AG</div>
</body></html>`

func TestExtractMergeWithoutOverwrite(t *testing.T) {
	srv := servePage(t, partialPage)

	rp, err := newTestExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.JobTitle != "Data Engineer" {
		t.Errorf("structured title overwritten: %q", rp.JobTitle)
	}
	if rp.CompanyName != "Beta AG" {
		t.Errorf("DOM company not merged: %q", rp.CompanyName)
	}
}

// Malformed structured data is swallowed and the DOM fallback still runs.
const malformedLDPage = `<html><head>
<script type="application/ld+json">{not valid json</script>
</head><body><h1>Backend Engineer</h1><div class="company-name">Gamma SE</div></body></html>`

func TestExtractMalformedJSONLD(t *testing.T) {
	srv := servePage(t, malformedLDPage)

	rp, err := newTestExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("malformed ld+json must not fail extraction: %v", err)
	}
	if rp.JobTitle != "Backend Engineer" {
		t.Errorf("title = %q", rp.JobTitle)
	}
}

func TestExtractNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestExtractor().Extract(context.Background(), srv.URL)
	fe, ok := fetch.IsFetchError(err)
	if !ok || fe.Kind != fetch.KindNotFound {
		t.Fatalf("expected typed not_found error, got %v", err)
	}
}

func TestExtractNothingUsable(t *testing.T) {
	srv := servePage(t, `<html><body><p>Diese Stelle ist nicht mehr verfügbar.</p></body></html>`)

	_, err := newTestExtractor().Extract(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestStrategySelection(t *testing.T) {
	if s := StrategyForURL("https://www.stepstone.de/stellenangebote--dev--1234567.html"); s.Name != "stepstone" {
		t.Errorf("stepstone host picked %q", s.Name)
	}
	if s := StrategyForURL("https://www.xing.com/jobs/berlin-dev-999"); s.Name != "xing" {
		t.Errorf("xing host picked %q", s.Name)
	}
	if s := StrategyForURL("https://careers.acme.de/jobs/42"); s.Name != "generic" {
		t.Errorf("unknown host picked %q", s.Name)
	}
}

func TestWebsiteLinkBoardHostRejected(t *testing.T) {
	jp := map[string]any{
		"@type": "JobPosting",
		"title": "Dev",
		"hiringOrganization": map[string]any{
			"name": "StepStone Listing",
			"url":  "https://www.stepstone.de/cmp/de/acme",
		},
	}
	rp := &RawPosting{}
	applyJSONLD(rp, jp, stepstone)
	if rp.WebsiteLink != "" {
		t.Errorf("board-host website link must be rejected, got %q", rp.WebsiteLink)
	}
}

// employmentType carries FULL_TIME/PART_TIME, not a workplace policy; it
// must only reach the work-mode text when it holds a remote/hybrid signal.
func TestEmploymentTypeIsNotWorkMode(t *testing.T) {
	jp := map[string]any{"@type": "JobPosting", "title": "Dev", "employmentType": "FULL_TIME"}
	rp := &RawPosting{}
	applyJSONLD(rp, jp, generic)
	if rp.WorkModeText != "" {
		t.Errorf("FULL_TIME leaked into work-mode text: %q", rp.WorkModeText)
	}

	jp["employmentType"] = "Feste Anstellung, Home-Office möglich"
	rp = &RawPosting{}
	applyJSONLD(rp, jp, generic)
	if rp.WorkModeText == "" {
		t.Error("remote signal in employmentType was dropped")
	}
}

const careerLinkPage = `<html><body>
<h1>Backend Developer</h1>
<div class="company-name">Acme GmbH</div>
<a href="/impressum">Impressum</a>
<a href="https://jobs.acme.de/karriere">Karriere bei Acme</a>
</body></html>`

func TestCareerPageLinkBestEffort(t *testing.T) {
	srv := servePage(t, careerLinkPage)

	rp, err := newTestExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rp.CareerPageLink != "https://jobs.acme.de/karriere" {
		t.Errorf("career link = %q", rp.CareerPageLink)
	}
}

func TestCareerLinkBoardHostRejected(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><a href="/karriere/tipps">Karriere-Tipps</a></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := careerLink(doc, stepstone, "https://www.stepstone.de/job/1.html"); got != "" {
		t.Errorf("board's own career link must be rejected, got %q", got)
	}
}

func TestLabeledLocationFallback(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Standort: München\nVollzeit", "München"},
		{"Great role. Location: Hamburg | Full-time", "Hamburg"},
		{"Einsatzort:   Frankfurt am Main\r\nab sofort", "Frankfurt am Main"},
		{"No label anywhere here", ""},
	}
	for _, tc := range cases {
		if got := locationFromLabeledText(tc.in); got != tc.want {
			t.Errorf("locationFromLabeledText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestApplyRedirectRejected(t *testing.T) {
	if !stepstone.IsApplyRedirect("https://www.stepstone.de/application/form/123") {
		t.Error("board redirect not recognized")
	}
	if stepstone.IsApplyRedirect("https://careers.acme.de/apply/123") {
		t.Error("employer apply link wrongly rejected")
	}
}
