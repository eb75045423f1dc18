package usecase

import (
	"context"
	"errors"
	"strings"

	"docusense-backend/pkg/vectorindex"
)

// DefaultLimit and MaxLimit bound how many matches a search returns.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// ErrEmptyQuery is returned for blank search queries.
var ErrEmptyQuery = errors.New("search query is empty")

// SearchUsecase answers similarity queries scoped to a single tenant.
type SearchUsecase interface {
	Search(ctx context.Context, tenantID, query string, limit int) ([]vectorindex.Match, error)
}

// QueryIndex is what the usecase needs from the vector index.
type QueryIndex interface {
	Query(ctx context.Context, tenantID, query string, limit int) ([]vectorindex.Match, error)
}

type searchUsecase struct {
	index QueryIndex
}

// NewSearchUsecase creates a new instance of searchUsecase.
func NewSearchUsecase(index QueryIndex) SearchUsecase {
	return &searchUsecase{index: index}
}

func (u *searchUsecase) Search(ctx context.Context, tenantID, query string, limit int) ([]vectorindex.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return u.index.Query(ctx, tenantID, query, limit)
}
