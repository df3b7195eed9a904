package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"applyflow-engine/internal/ai"
	"applyflow-engine/internal/cards"
	"applyflow-engine/internal/dedup"
	"applyflow-engine/internal/domain"
	"applyflow-engine/internal/extract"
	"applyflow-engine/internal/fetch"
	"applyflow-engine/internal/store"
)

type fakeCards struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeCards) CreateCard(ctx context.Context, rec domain.JobRecord) (string, error) {
	f.calls.Add(1)
	if f.fail {
		return "", errors.New("card service down")
	}
	return "card-123", nil
}

type fakeLetters struct{}

func (fakeLetters) Generate(ctx context.Context, prompt string) (string, error) {
	return "Sehr geehrte Damen und Herren, ...", nil
}

func newTestPipeline(t *testing.T, cardCreator *fakeCards) (*Pipeline, *dedup.Engine) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	log := zap.NewNop().Sugar()
	engine := dedup.NewEngine(db.Pool, log)

	client := fetch.NewClient(fetch.Config{
		Timeout:     5 * time.Second,
		HostReqsSec: 1000,
		HostBurst:   1000,
	}, log)

	var creator cards.Creator
	var letters ai.LetterWriter
	if cardCreator != nil {
		creator = cardCreator
		letters = fakeLetters{}
	}

	return New(extract.New(client, log), engine, creator, letters, log), engine
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
  "@type": "JobPosting",
  "title": "Senior Python Developer (m/w/d)",
  "description": "<p>Wir suchen eine erfahrene Entwicklerin für unser Team. Die Arbeit ist zu 100% remote möglich und wir bieten flexible Zeiten.</p>",
  "hiringOrganization": {"@type": "Organization", "name": "Acme GmbH"}
}
</script></head><body></body></html>`

const domPage = `<html><body>
<h1>Senior Python Developer (m/w/d)</h1>
<div class="company-name">Acme GmbH</div>
<div class="job-description">
<p>Wir suchen eine erfahrene Entwicklerin für unser Team. Die Arbeit ist zu 100% remote möglich und wir bieten flexible Zeiten.</p>
</div>
</body></html>`

// The same underlying job, reached once via structured data only and once
// via DOM markers only, must classify identically.
func TestRoundTripStructuredVsDOM(t *testing.T) {
	p, _ := newTestPipeline(t, nil)

	srvA := servePage(t, structuredPage)
	srvB := servePage(t, domPage)

	outA, err := p.Process(context.Background(), srvA.URL+"/a/11111")
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, outA.Status)

	outB, err := p.Process(context.Background(), srvB.URL+"/b/22222")
	require.NoError(t, err)
	// semantic stage catches the re-post under a different URL
	require.Equal(t, StatusDuplicate, outB.Status)
	require.Equal(t, domain.MatchSemantic, outB.Match.Method)

	require.Equal(t, outA.Record.JobTitleClean, outB.Record.JobTitleClean)
	require.Equal(t, "Senior Python Developer", outB.Record.JobTitleClean)
	require.Equal(t, outA.Record.WorkMode, outB.Record.WorkMode)
	require.Equal(t, outA.Record.Language, outB.Record.Language)
	require.Equal(t, domain.LanguageGerman, outB.Record.Language)
}

func TestResubmitSameURLIsDuplicateByHash(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	srv := servePage(t, structuredPage)
	u := srv.URL + "/job/33333"

	out, err := p.Process(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, out.Status)

	out, err = p.Process(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, StatusDuplicate, out.Status)
	require.Equal(t, domain.MatchURLHash, out.Match.Method)
}

func TestFetch404IsScrapeFailedNotError(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	out, err := p.Process(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, StatusScrapeFailed, out.Status)
	require.Equal(t, "not_found", out.Reason)
}

func TestDuplicateSkipsCardCreation(t *testing.T) {
	creator := &fakeCards{}
	p, _ := newTestPipeline(t, creator)
	srv := servePage(t, structuredPage)
	u := srv.URL + "/job/44444"

	out, err := p.Process(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, out.Status)
	require.NotEmpty(t, out.Letter)

	_, err = p.Process(context.Background(), u)
	require.NoError(t, err)
	require.EqualValues(t, 1, creator.calls.Load(), "card must be created once, not per resubmission")
}

// History is written only after downstream side effects were accepted: a
// failing card service must leave no row, so the URL stays submittable.
func TestFailedSideEffectDoesNotPersist(t *testing.T) {
	creator := &fakeCards{fail: true}
	p, engine := newTestPipeline(t, creator)
	srv := servePage(t, structuredPage)
	u := srv.URL + "/job/55555"

	_, err := p.Process(context.Background(), u)
	require.Error(t, err)

	hist, err := engine.History(context.Background())
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestProcessAllKeepsOrder(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	ok := servePage(t, structuredPage)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	outs, err := p.ProcessAll(context.Background(), []string{ok.URL + "/x/66666", bad.URL}, 2)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	require.Equal(t, StatusProcessed, outs[0].Status)
	require.Equal(t, StatusScrapeFailed, outs[1].Status)
}
