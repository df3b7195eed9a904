package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Field names the DOM fallback can fill. One selector candidate list per
// field, per source.
type Field string

const (
	FieldTitle      Field = "title"
	FieldCompany    Field = "company"
	FieldLocation   Field = "location"
	FieldPostedDate Field = "posted_date"
	FieldWorkMode   Field = "work_mode"
	FieldApplyLink  Field = "apply_link"
)

// Strategy bundles everything source-specific: which hosts it claims, which
// hosts count as the board's own (a hiringOrganization.url pointing there is
// the board, not the employer), the board's apply-redirect path, and the
// marker selectors for the DOM fallback. Selected once at pipeline entry.
type Strategy struct {
	Name              string
	Hosts             []string
	BoardHosts        []string
	ApplyRedirectPath string
	Markers           map[Field][]string
}

var stepstone = Strategy{
	Name:              "stepstone",
	Hosts:             []string{"stepstone.de", "stepstone.com", "stepstone.at"},
	BoardHosts:        []string{"stepstone.de", "stepstone.com", "stepstone.at"},
	ApplyRedirectPath: "/application",
	Markers: map[Field][]string{
		FieldTitle: {
			`[data-at="header-job-title"]`,
			`h1[data-at="header-job-title"]`,
			"h1",
		},
		FieldCompany: {
			`[data-at="metadata-company-name"]`,
			`[data-at="header-company-name"]`,
		},
		FieldLocation: {
			`[data-at="metadata-location"]`,
			`[data-at="header-company-location"]`,
		},
		FieldPostedDate: {
			`[data-at="metadata-online-date"] time`,
			`[data-at="metadata-online-date"]`,
		},
		FieldWorkMode: {
			`[data-at="metadata-work-type"]`,
			`[data-at="metadata-home-office"]`,
		},
		FieldApplyLink: {
			`a[data-at="apply-button"]`,
			`a[data-at="header-apply-button"]`,
		},
	},
}

var xing = Strategy{
	Name:              "xing",
	Hosts:             []string{"xing.com"},
	BoardHosts:        []string{"xing.com"},
	ApplyRedirectPath: "/jobs/apply",
	Markers: map[Field][]string{
		FieldTitle: {
			`[data-testid="job-title"]`,
			`h1[data-xds="Headline"]`,
			"h1",
		},
		FieldCompany: {
			`[data-testid="company-name"]`,
			`[data-testid="job-company-name"]`,
		},
		FieldLocation: {
			`[data-testid="job-location"]`,
			`[data-testid="location-info"]`,
		},
		FieldPostedDate: {
			`[data-testid="job-posted-date"] time`,
			`[data-testid="job-posted-date"]`,
		},
		FieldWorkMode: {
			`[data-testid="job-remote-option"]`,
			`[data-testid="employment-info"]`,
		},
		FieldApplyLink: {
			`a[data-testid="apply-button"]`,
		},
	},
}

// generic covers unknown hosts with board-agnostic selectors.
var generic = Strategy{
	Name: "generic",
	Markers: map[Field][]string{
		FieldTitle:      {"h1", `[itemprop="title"]`, `meta[property="og:title"]`},
		FieldCompany:    {`[itemprop="hiringOrganization"]`, ".company", ".company-name"},
		FieldLocation:   {`[itemprop="jobLocation"]`, ".location", ".job-location"},
		FieldPostedDate: {`[itemprop="datePosted"]`, "time[datetime]"},
		FieldWorkMode:   {".work-mode", ".workplace-type"},
		FieldApplyLink:  {`a[rel="apply"]`, "a.apply", "a#apply"},
	},
}

var builtinStrategies = []Strategy{stepstone, xing}

// StrategyForURL picks the source strategy from the URL host, falling back
// to the generic one for unknown boards.
func StrategyForURL(rawURL string) Strategy {
	u, err := url.Parse(rawURL)
	if err != nil {
		return generic
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range builtinStrategies {
		for _, h := range s.Hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return s
			}
		}
	}
	return generic
}

// IsBoardHost reports whether the host belongs to the job board itself.
// Used to reject hiringOrganization URLs that just point back at the board.
func (s Strategy) IsBoardHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range s.BoardHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// IsApplyRedirect reports whether href points back into the board's own
// apply-redirect path rather than at the employer.
func (s Strategy) IsApplyRedirect(href string) bool {
	if s.ApplyRedirectPath == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Host != "" && !s.IsBoardHost(href) {
		return false
	}
	return strings.Contains(strings.ToLower(u.Path), s.ApplyRedirectPath)
}

var (
	pathIDRe = regexp.MustCompile(`(\d{5,})`)
	idParams = []string{"id", "jobId", "job_id", "jk"}
)

// JobIDFromURL pulls a site-native identifier out of the URL when one is
// recognizable: a known query parameter or the last long digit run in the
// path.
func JobIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, k := range idParams {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	matches := pathIDRe.FindAllString(u.Path, -1)
	if len(matches) > 0 {
		return matches[len(matches)-1]
	}
	return ""
}
