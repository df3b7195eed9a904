// Package dedup decides whether a candidate posting has already been
// processed. Two sequential stages, first match wins: exact identity by URL
// hash, then a semantic match on normalized company+title. Deciding when to
// persist is the orchestrator's job; this engine only answers queries and
// exposes an explicit record operation.
package dedup

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"applyflow-engine/internal/domain"
)

// Match is the outcome of a duplicate check. On a semantic hit Record is the
// original history entry, original source URL included; no new identity is
// fabricated.
type Match struct {
	Record domain.DedupRecord
	Method domain.MatchMethod
}

// Engine owns all reads and writes of the processed-jobs history. The db
// handle is injected by the orchestrator; there is no package-level state.
type Engine struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func NewEngine(db *sql.DB, log *zap.SugaredLogger) *Engine {
	return &Engine{db: db, log: log}
}

// ContentHash derives the deterministic identity key from the source URL
// alone. Identity is the URL, not the extracted content: scrape drift in
// company or title text must not defeat stage one.
func ContentHash(sourceURL string) string {
	sum := sha256.Sum256([]byte(canonicalizeURL(sourceURL)))
	return hex.EncodeToString(sum[:])
}

// CheckDuplicate runs the two stages in order. Stage two is only reached
// when stage one found nothing and both company and title are non-empty:
// an all-empty match is meaningless and explicitly excluded.
func (e *Engine) CheckDuplicate(ctx context.Context, sourceURL, companyName, jobTitle string) (Match, bool, error) {
	hash := ContentHash(sourceURL)

	rec, found, err := e.bySourceIdentity(ctx, hash, sourceURL)
	if err != nil {
		return Match{}, false, fmt.Errorf("dedup url stage: %w", err)
	}
	if found {
		e.log.Debugw("duplicate by url hash", "url", sourceURL, "hash", hash)
		return Match{Record: rec, Method: domain.MatchURLHash}, true, nil
	}

	company := semanticKey(companyName)
	title := semanticKey(jobTitle)
	if company == "" || title == "" {
		return Match{Method: domain.MatchNone}, false, nil
	}

	rec, found, err = e.bySemanticIdentity(ctx, company, title)
	if err != nil {
		return Match{}, false, fmt.Errorf("dedup semantic stage: %w", err)
	}
	if found {
		e.log.Debugw("duplicate by semantic match",
			"url", sourceURL, "original_url", rec.SourceURL, "company", companyName, "title", jobTitle)
		return Match{Record: rec, Method: domain.MatchSemantic}, true, nil
	}

	return Match{Method: domain.MatchNone}, false, nil
}

// RecordProcessed persists one history row. Called by the orchestrator only
// after all downstream side effects were accepted; at-most-once intent, not
// a guarantee against concurrent orchestrators.
func (e *Engine) RecordProcessed(ctx context.Context, sourceURL, companyName, jobTitle, cardRef string) (string, error) {
	hash := ContentHash(sourceURL)

	_, err := e.db.ExecContext(ctx, `
INSERT OR IGNORE INTO processed_jobs(content_hash, source_url, company_name, job_title, card_ref, processed_at)
VALUES(?,?,?,?,?,?);`,
		hash,
		strings.TrimSpace(sourceURL),
		strings.TrimSpace(companyName),
		strings.TrimSpace(jobTitle),
		strings.TrimSpace(cardRef),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("record processed: %w", err)
	}
	return hash, nil
}

// History lists all rows in storage order, oldest first.
func (e *Engine) History(ctx context.Context) ([]domain.DedupRecord, error) {
	rows, err := e.db.QueryContext(ctx, `
SELECT content_hash, source_url, company_name, job_title, card_ref, processed_at
FROM processed_jobs
ORDER BY rowid ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DedupRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Reset is the only deletion path for history rows.
func (e *Engine) Reset(ctx context.Context) (int64, error) {
	res, err := e.db.ExecContext(ctx, `DELETE FROM processed_jobs;`)
	if err != nil {
		return 0, fmt.Errorf("reset history: %w", err)
	}
	n, _ := res.RowsAffected()
	e.log.Infow("history reset", "deleted", n)
	return n, nil
}

func (e *Engine) bySourceIdentity(ctx context.Context, hash, sourceURL string) (domain.DedupRecord, bool, error) {
	row := e.db.QueryRowContext(ctx, `
SELECT content_hash, source_url, company_name, job_title, card_ref, processed_at
FROM processed_jobs
WHERE content_hash = ? OR source_url = ?
ORDER BY rowid ASC
LIMIT 1;`, hash, strings.TrimSpace(sourceURL))
	return scanOne(row)
}

// bySemanticIdentity scans history in storage order and compares the
// normalized company+title pair for whole-field equality. No fuzzy
// distance.
func (e *Engine) bySemanticIdentity(ctx context.Context, company, title string) (domain.DedupRecord, bool, error) {
	rows, err := e.db.QueryContext(ctx, `
SELECT content_hash, source_url, company_name, job_title, card_ref, processed_at
FROM processed_jobs
WHERE company_name != '' AND job_title != ''
ORDER BY rowid ASC;`)
	if err != nil {
		return domain.DedupRecord{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return domain.DedupRecord{}, false, err
		}
		if semanticKey(rec.CompanyName) == company && semanticKey(rec.JobTitle) == title {
			return rec, true, nil
		}
	}
	return domain.DedupRecord{}, false, rows.Err()
}

// semanticKey folds case and trims whitespace on an NFC-normalized string,
// so umlauts, apostrophes and ampersands compare byte-stable without
// locale-specific mangling.
func semanticKey(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// canonicalizeURL lowercases scheme/host, drops fragments and tracking
// params and sorts the query so the hash is stable across re-submissions of
// the same listing URL.
func canonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (domain.DedupRecord, error) {
	var rec domain.DedupRecord
	var processedAt string
	if err := r.Scan(&rec.ContentHash, &rec.SourceURL, &rec.CompanyName, &rec.JobTitle, &rec.CardRef, &processedAt); err != nil {
		return rec, err
	}
	rec.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)
	return rec, nil
}

func scanOne(row *sql.Row) (domain.DedupRecord, bool, error) {
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return domain.DedupRecord{}, false, nil
	}
	if err != nil {
		return domain.DedupRecord{}, false, err
	}
	return rec, true, nil
}
