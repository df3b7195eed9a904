package domain

import "time"

// WorkMode is the canonical location policy of a posting. Raw free-text
// variants are normalized at construction time; downstream code never
// compares raw strings.
type WorkMode string

const (
	WorkModeRemote  WorkMode = "remote"
	WorkModeHybrid  WorkMode = "hybrid"
	WorkModeOnsite  WorkMode = "onsite"
	WorkModeUnknown WorkMode = ""
)

type Language string

const (
	LanguageGerman  Language = "DE"
	LanguageEnglish Language = "EN"
)

type Seniority string

const (
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityExecutive Seniority = "executive"
)

// Contact is an optional contact person parsed from the posting body.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// JobRecord is the canonical output of the extraction pipeline. It is built
// once by the record builder and treated as read-only by every downstream
// consumer (cards, letters, templates).
type JobRecord struct {
	SourceURL   string `json:"source_url"` // always present, primary identity
	SourceJobID string `json:"source_job_id,omitempty"`

	CompanyName     string   `json:"company_name"`
	JobTitle        string   `json:"job_title"`
	JobTitleClean   string   `json:"job_title_clean"`
	Location        string   `json:"location"`
	WorkMode        WorkMode `json:"work_mode"`
	PublicationDate string   `json:"publication_date,omitempty"` // ISO 8601 or empty

	CompanyAddress      string `json:"company_address,omitempty"`
	CompanyAddressLine1 string `json:"company_address_line1"`
	CompanyAddressLine2 string `json:"company_address_line2"`

	JobDescription string `json:"job_description"`

	WebsiteLink     string `json:"website_link,omitempty"`
	CareerPageLink  string `json:"career_page_link,omitempty"`
	DirectApplyLink string `json:"direct_apply_link,omitempty"`

	Contact *Contact `json:"contact,omitempty"`

	Language            Language  `json:"language"`
	Seniority           Seniority `json:"seniority"`
	CompanyJobReference string    `json:"company_job_reference,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}
