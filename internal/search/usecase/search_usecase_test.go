package usecase

import (
	"context"
	"testing"

	"docusense-backend/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryIndex struct {
	lastTenantID string
	lastQuery    string
	lastLimit    int
	matches      []vectorindex.Match
}

func (f *fakeQueryIndex) Query(_ context.Context, tenantID, query string, limit int) ([]vectorindex.Match, error) {
	f.lastTenantID = tenantID
	f.lastQuery = query
	f.lastLimit = limit
	return f.matches, nil
}

func TestSearchScopesToTenant(t *testing.T) {
	index := &fakeQueryIndex{matches: []vectorindex.Match{{ID: "t1_item_0", Title: "report.txt"}}}
	uc := NewSearchUsecase(index)

	matches, err := uc.Search(context.Background(), "t1", "revenue forecast", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "t1", index.lastTenantID)
	assert.Equal(t, "revenue forecast", index.lastQuery)
	assert.Equal(t, 5, index.lastLimit)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	uc := NewSearchUsecase(&fakeQueryIndex{})

	_, err := uc.Search(context.Background(), "t1", "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero uses default", 0, DefaultLimit},
		{"negative uses default", -1, DefaultLimit},
		{"within bounds", 20, 20},
		{"above max clamped", 500, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &fakeQueryIndex{}
			uc := NewSearchUsecase(index)

			_, err := uc.Search(context.Background(), "t1", "q", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, index.lastLimit)
		})
	}
}
