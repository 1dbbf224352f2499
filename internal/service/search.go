package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/watchlog/internal/domain"
)

// SearchService searches the metadata provider for titles to add
type SearchService struct {
	client domain.SearchClient
	logger *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(client domain.SearchClient, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{client: client, logger: logger}
}

// SearchTitles queries the backend and ranks results against the query.
// A blank query returns no results without a request.
func (s *SearchService) SearchTitles(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.client.SearchTitles(ctx, query)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return nil, err
	}

	ranked := rankResults(dedupe(results), query)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// dedupe drops repeated provider ids, keeping the first occurrence
func dedupe(results []domain.SearchResult) []domain.SearchResult {
	type key struct {
		kind domain.MediaKind
		id   int64
	}
	seen := make(map[key]bool, len(results))
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		k := key{r.Kind, r.ExternalID}
		if r.ExternalID != 0 && seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// rankResults orders results by match quality, keeping the provider's order
// among equal scores
func rankResults(results []domain.SearchResult, query string) []domain.SearchResult {
	if len(results) == 0 {
		return results
	}

	query = strings.ToLower(query)

	type rankedResult struct {
		result domain.SearchResult
		score  int
	}

	ranked := make([]rankedResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, rankedResult{result: r, score: calculateMatchScore(strings.ToLower(r.Title), query, r)})
	}

	// Lower is better
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	out := make([]domain.SearchResult, len(ranked))
	for i, r := range ranked {
		out[i] = r.result
	}
	return out
}

// calculateMatchScore calculates a match score for ranking.
// Lower score = better match.
func calculateMatchScore(title, query string, r domain.SearchResult) int {
	if title == query {
		return 0
	}

	if strings.HasPrefix(title, query) {
		return 10
	}

	if strings.Contains(title, query) {
		return 50
	}

	// Subsequence matches ("lotr" in "lord of the rings") beat plain edit distance
	if fuzzy.MatchFold(query, title) {
		return 70 + fuzzy.RankMatchFold(query, title)/4
	}

	score := 100 + fuzzy.LevenshteinDistance(query, title)

	// Entries without a year are usually stubs
	if r.Year == 0 {
		score += 5
	}
	return score
}
