package syncx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/credsec/internal/parsex"
	"github.com/dmitrijs2005/credsec/internal/server/models"
)

type fakeSearcher struct {
	results map[string][]string
	errs    map[string]error
	modes   map[string]Mode
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: map[string][]string{},
		errs:    map[string]error{},
		modes:   map[string]Mode{},
	}
}

func (f *fakeSearcher) Search(_ context.Context, term string, mode Mode) ([]string, error) {
	f.modes[term] = mode
	if err := f.errs[term]; err != nil {
		return nil, err
	}
	return f.results[term], nil
}

type ingested struct {
	cred     *parsex.Credential
	source   models.Source
	syncedAt time.Time
}

type fakeIngester struct {
	seen map[string]ingested
	errs map[string]error
}

func newFakeIngester() *fakeIngester {
	return &fakeIngester{seen: map[string]ingested{}, errs: map[string]error{}}
}

func (f *fakeIngester) Ingest(_ context.Context, cred *parsex.Credential, source models.Source, syncedAt time.Time) (bool, error) {
	if err := f.errs[cred.Email]; err != nil {
		return false, err
	}
	_, existed := f.seen[cred.Email]
	f.seen[cred.Email] = ingested{cred: cred, source: source, syncedAt: syncedAt}
	return !existed, nil
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"email", "domain", "auto"} {
		mode, err := ParseMode(valid)
		require.NoError(t, err)
		assert.Equal(t, Mode(valid), mode)
	}
	_, err := ParseMode("selector")
	assert.Error(t, err)
}

func TestRun_ParsesAndIngests(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["example.com"] = []string{
		"user@example.com:hunter2",
		"not a credential at all",
		"second@example.com:pass",
	}
	sink := newFakeIngester()

	svc := NewService(searcher, sink, nopLogger())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report, err := svc.Run(context.Background(), []string{"example.com"}, ModeDomain)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "unparseable")

	got := sink.seen["user@example.com"]
	require.NotNil(t, got.cred)
	assert.Equal(t, models.SourceIntelx, got.source)
	assert.Equal(t, fixed, got.syncedAt)
	assert.Equal(t, "hunter2", got.cred.Password)
}

func TestRun_AutoModePerTerm(t *testing.T) {
	searcher := newFakeSearcher()
	svc := NewService(searcher, newFakeIngester(), nopLogger())

	_, err := svc.Run(context.Background(), []string{"user@example.com", "example.com"}, ModeAuto)
	require.NoError(t, err)

	assert.Equal(t, ModeEmail, searcher.modes["user@example.com"])
	assert.Equal(t, ModeDomain, searcher.modes["example.com"])
}

func TestRun_SecondSyncUpdatesInsteadOfCreates(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["example.com"] = []string{"user@example.com:hunter2"}
	sink := newFakeIngester()
	svc := NewService(searcher, sink, nopLogger())

	first, err := svc.Run(context.Background(), []string{"example.com"}, ModeDomain)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Updated)

	second, err := svc.Run(context.Background(), []string{"example.com"}, ModeDomain)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
}

func TestRun_TermFailureIsIsolated(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.errs["down.com"] = errors.New("api unavailable")
	searcher.results["up.com"] = []string{"user@up.com:p"}
	sink := newFakeIngester()
	svc := NewService(searcher, sink, nopLogger())

	report, err := svc.Run(context.Background(), []string{"down.com", "up.com"}, ModeDomain)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors[0], "down.com")
	assert.Contains(t, sink.seen, "user@up.com")
}

func TestRun_IngestFailureIsIsolated(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.results["example.com"] = []string{"bad@example.com:p", "good@example.com:p"}
	sink := newFakeIngester()
	sink.errs["bad@example.com"] = errors.New("graph unavailable")
	svc := NewService(searcher, sink, nopLogger())

	report, err := svc.Run(context.Background(), []string{"example.com"}, ModeDomain)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, sink.seen, "good@example.com")
}

func TestRun_SkipsBlankTerms(t *testing.T) {
	searcher := newFakeSearcher()
	svc := NewService(searcher, newFakeIngester(), nopLogger())

	report, err := svc.Run(context.Background(), []string{"", "  "}, ModeDomain)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, searcher.modes)
}
