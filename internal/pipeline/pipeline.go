// Package pipeline wires fetch, extraction, normalization, classification
// and deduplication into the one call the HTTP surface exposes. It is the
// only place that decides which of the three user-visible outcomes a
// submission gets: processed, duplicate or scrape failed.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"applyflow-engine/internal/ai"
	"applyflow-engine/internal/cards"
	"applyflow-engine/internal/dedup"
	"applyflow-engine/internal/domain"
	"applyflow-engine/internal/extract"
	"applyflow-engine/internal/fetch"
	"applyflow-engine/internal/record"
)

type Status string

const (
	StatusProcessed    Status = "processed"
	StatusDuplicate    Status = "duplicate"
	StatusScrapeFailed Status = "scrape_failed"
)

// Outcome is what the orchestrator surfaces. The three states carry
// different follow-up actions (proceed, skip, retry manually) and are never
// collapsed into one generic failure.
type Outcome struct {
	Status Status            `json:"status"`
	Record *domain.JobRecord `json:"record,omitempty"`
	Match  *dedup.Match      `json:"match,omitempty"`
	Letter string            `json:"letter,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

type Pipeline struct {
	extractor *extract.Extractor
	engine    *dedup.Engine
	cards     cards.Creator   // optional
	letters   ai.LetterWriter // optional
	log       *zap.SugaredLogger
}

func New(extractor *extract.Extractor, engine *dedup.Engine, cardCreator cards.Creator, letterWriter ai.LetterWriter, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
		cards:     cardCreator,
		letters:   letterWriter,
		log:       log,
	}
}

// Process runs one posting URL through the whole pipeline. History is
// written only after the downstream collaborators accepted the record; a
// race between two concurrent submissions of the same posting is an
// accepted limitation, callers needing strict at-most-once must serialize
// per URL themselves.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (Outcome, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Outcome{}, errors.New("empty url")
	}

	rp, err := p.extractor.Extract(ctx, rawURL)
	if err != nil {
		if fe, ok := fetch.IsFetchError(err); ok {
			p.log.Warnw("scrape failed", "url", rawURL, "kind", fe.Kind, "status", fe.Status)
			return Outcome{Status: StatusScrapeFailed, Reason: string(fe.Kind)}, nil
		}
		if errors.Is(err, extract.ErrNoRecord) {
			p.log.Warnw("scrape failed", "url", rawURL, "reason", "no record")
			return Outcome{Status: StatusScrapeFailed, Reason: "no_record"}, nil
		}
		return Outcome{}, err
	}

	rec := record.Build(rp, time.Now())

	match, isDup, err := p.engine.CheckDuplicate(ctx, rec.SourceURL, rec.CompanyName, rec.JobTitle)
	if err != nil {
		return Outcome{}, err
	}
	if isDup {
		p.log.Infow("duplicate detected",
			"url", rawURL, "method", match.Method, "original_url", match.Record.SourceURL)
		return Outcome{Status: StatusDuplicate, Record: &rec, Match: &match}, nil
	}

	out := Outcome{Status: StatusProcessed, Record: &rec}

	var cardRef string
	if p.cards != nil {
		cardRef, err = p.cards.CreateCard(ctx, rec)
		if err != nil {
			// card creation is a downstream side effect; if it fails we do
			// not persist, so the posting can be resubmitted
			return Outcome{}, err
		}
	}

	if p.letters != nil {
		letter, err := p.letters.Generate(ctx, ai.LetterPrompt(rec))
		if err != nil {
			return Outcome{}, err
		}
		out.Letter = letter
	}

	hash, err := p.engine.RecordProcessed(ctx, rec.SourceURL, rec.CompanyName, rec.JobTitle, cardRef)
	if err != nil {
		return Outcome{}, err
	}
	p.log.Infow("posting processed",
		"url", rawURL, "company", rec.CompanyName, "title", rec.JobTitleClean, "hash", hash)

	return out, nil
}

// ProcessAll fans a batch out over a bounded worker group. Results keep the
// input order.
func (p *Pipeline) ProcessAll(ctx context.Context, urls []string, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = 4
	}

	outcomes := make([]Outcome, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			out, err := p.Process(gctx, u)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
