// Package extract turns a fetched posting page into a raw field set. It
// prefers embedded structured data, falls back to per-source DOM markers and
// finishes with free-text scans. Fetch failures surface as typed errors;
// everything else degrades to "no record".
package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"applyflow-engine/internal/fetch"
)

// ErrNoRecord means the page yielded nothing usable. A normal outcome for
// expired or empty pages, distinct from a fetch failure.
var ErrNoRecord = errors.New("no usable job record on page")

// RawPosting carries the unnormalized field set the record builder consumes.
// Empty string means "not found"; absence is a value here, never an error.
type RawPosting struct {
	SourceURL   string
	SourceName  string
	SourceJobID string

	CompanyName string
	JobTitle    string
	Location    string

	Street     string
	PostalCode string
	Locality   string

	WorkModeText    string
	PublicationDate string
	Description     string

	WebsiteLink     string
	CareerPageLink  string
	DirectApplyLink string

	ContactName  string
	ContactEmail string
	ContactPhone string

	Reference string
}

type Extractor struct {
	client *fetch.Client
	log    *zap.SugaredLogger
}

func New(client *fetch.Client, log *zap.SugaredLogger) *Extractor {
	return &Extractor{client: client, log: log}
}

// Extract fetches the URL and runs the three-stage extraction. The returned
// error is either a *fetch.Error or ErrNoRecord; parsing never propagates a
// raw panic to the caller.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (rp *RawPosting, err error) {
	strat := StrategyForURL(rawURL)

	body, err := e.client.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorw("extraction panic", "url", rawURL, "source", strat.Name, "panic", r)
			rp, err = nil, ErrNoRecord
		}
	}()

	doc, perr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if perr != nil {
		e.log.Warnw("parse failed", "url", rawURL, "source", strat.Name, "error", perr)
		return nil, ErrNoRecord
	}

	rp = &RawPosting{
		SourceURL:   rawURL,
		SourceName:  strat.Name,
		SourceJobID: JobIDFromURL(rawURL),
	}

	if jp := findJobPostingLD(doc); jp != nil {
		applyJSONLD(rp, jp, strat)
	}
	applyDOM(rp, doc, strat, rawURL)
	applyFreeText(rp, doc)

	if rp.JobTitle == "" && rp.CompanyName == "" {
		e.log.Infow("nothing usable extracted", "url", rawURL, "source", strat.Name)
		return nil, ErrNoRecord
	}
	return rp, nil
}

// applyFreeText runs the source-independent scans over the description and,
// when that comes up empty, the whole page text.
func applyFreeText(rp *RawPosting, doc *goquery.Document) {
	scan := rp.Description
	if scan == "" {
		scan = doc.Find("body").Text()
	}

	if rp.Reference == "" {
		rp.Reference = FindReference(scan)
	}
	if rp.ContactEmail == "" {
		rp.ContactEmail = FindContactEmail(scan)
	}
	if rp.ContactPhone == "" {
		rp.ContactPhone = FindContactPhone(scan)
	}
	if rp.ContactName == "" {
		rp.ContactName = FindContactName(scan)
	}
}

// htmlToText strips markup from an HTML fragment (structured-data
// descriptions ship as HTML) while keeping block boundaries as newlines.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})
	doc.Find("p, li, div, h1, h2, h3, h4, ul, ol").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return collapseBlock(doc.Text())
}
