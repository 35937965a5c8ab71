package assistant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"nutrisense/internal/database"
)

// fakeGenerator is a scripted Generator for exercising fallback paths
// without network access.
type fakeGenerator struct {
	available bool
	reply     string
	err       error
	calls     []GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Available() bool { return f.available }

// fakeSearcher returns a scripted page per query, in call order.
type fakeSearcher struct {
	available bool
	pages     map[string][]SearchResult
	errs      map[string]error
	calls     []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	f.calls = append(f.calls, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.pages[query], nil
}

func (f *fakeSearcher) Available() bool { return f.available }

func newTestAssistant(t *testing.T, gen Generator, search Searcher) (*Assistant, *database.Service) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, gen, search, zerolog.Nop()), db
}

// results builds n distinct search results with the given URL prefix.
func results(prefix string, n int) []SearchResult {
	out := make([]SearchResult, n)
	for i := range out {
		out[i] = SearchResult{
			URL:   prefix + string(rune('a'+i)),
			Title: "Restaurant " + prefix + string(rune('a'+i)),
			Text:  "snippet",
		}
	}
	return out
}
