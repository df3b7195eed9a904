// Package record assembles the canonical JobRecord from raw extraction
// output, applying normalization and classification exactly once.
package record

import (
	"time"

	"applyflow-engine/internal/classify"
	"applyflow-engine/internal/domain"
	"applyflow-engine/internal/extract"
	"applyflow-engine/internal/normalize"
)

// Build produces the one JobRecord downstream consumers see. The raw
// posting must carry a non-empty SourceURL; everything else is optional and
// defaults deterministically.
func Build(rp *extract.RawPosting, now time.Time) domain.JobRecord {
	title := normalize.CleanText(rp.JobTitle)

	line1, line2 := normalize.SplitAddress(rp.Street, rp.PostalCode, rp.Locality)

	location := normalize.CleanText(rp.Location)
	if location == "" {
		location = normalize.CleanText(rp.Locality)
	}

	mode := normalize.WorkModeFromText(rp.WorkModeText)
	if mode == domain.WorkModeUnknown && rp.Description != "" {
		// the description often carries the only remote/hybrid hint
		mode = normalize.WorkModeFromText(rp.Description)
	}

	rec := domain.JobRecord{
		SourceURL:   rp.SourceURL,
		SourceJobID: rp.SourceJobID,

		CompanyName:     normalize.CleanText(rp.CompanyName),
		JobTitle:        title,
		Location:        location,
		PublicationDate: rp.PublicationDate,

		CompanyAddress:      normalize.ComposeAddress(line1, line2),
		CompanyAddressLine1: line1,
		CompanyAddressLine2: line2,

		JobDescription: rp.Description,

		WebsiteLink:     rp.WebsiteLink,
		CareerPageLink:  rp.CareerPageLink,
		DirectApplyLink: rp.DirectApplyLink,

		CompanyJobReference: rp.Reference,

		ScrapedAt: now.UTC(),
	}

	// JobTitleClean is never empty while JobTitle is set
	if title != "" {
		rec.JobTitleClean = normalize.CleanTitle(title)
	}

	rec.WorkMode = classify.WorkModeOrDefault(mode)
	rec.Language = classify.Language(rp.Description)
	rec.Seniority = classify.Seniority(rec.JobTitleClean, rp.Description)

	if rp.ContactName != "" || rp.ContactEmail != "" || rp.ContactPhone != "" {
		rec.Contact = &domain.Contact{
			Name:  rp.ContactName,
			Email: rp.ContactEmail,
			Phone: rp.ContactPhone,
		}
	}

	return rec
}
