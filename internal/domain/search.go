package domain

import "context"

// SearchClient provides network search over the metadata provider
type SearchClient interface {
	SearchTitles(ctx context.Context, query string) ([]SearchResult, error)
}
