package repository

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shenanigigs/jobstore/internal/models"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		wantPage    int
		wantLimit   int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"explicit", 4, 25, 4, 25},
		{"large limit is kept", 1, 5000, 1, 5000},
		{"huge page is clamped", math.MaxInt, 10, math.MaxInt/10 + 1, 10},
		{"huge page and limit", math.MaxInt, math.MaxInt, 2, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := normalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestBuildSearchQueryWithoutFilters(t *testing.T) {
	q, err := buildSearchQuery(models.SearchFilters{}, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, q.page)
	assert.Equal(t, 10, q.limit)
	assert.Equal(t, 0, q.offset)
	assert.NotContains(t, q.pageSQL, "WHERE")
	assert.Contains(t, q.pageSQL, "COUNT(*) OVER() AS total_count")
	assert.Contains(t, q.pageSQL, "ORDER BY time_posted DESC, id ASC")
	assert.True(t, strings.HasSuffix(q.pageSQL, "LIMIT $1 OFFSET $2"), q.pageSQL)
	assert.Equal(t, []any{10, 0}, q.pageArgs)

	assert.Equal(t, "SELECT COUNT(*) FROM jobs", q.countSQL)
	assert.Empty(t, q.countArgs)
}

func TestBuildSearchQueryCombinesFilters(t *testing.T) {
	filters := models.SearchFilters{
		Category:  "Web Development",
		Expertise: "Expert",
		Search:    "Proxy",
	}

	q, err := buildSearchQuery(filters, 3, 20)
	require.NoError(t, err)

	assert.Equal(t, 40, q.offset)
	assert.Contains(t, q.pageSQL, "category = $1")
	assert.Contains(t, q.pageSQL, "expertise = $2")
	assert.Contains(t, q.pageSQL, "(title ILIKE $3 OR description ILIKE $4 OR long_description ILIKE $5)")
	assert.True(t, strings.HasSuffix(q.pageSQL, "LIMIT $6 OFFSET $7"), q.pageSQL)
	assert.Equal(t, []any{
		"Web Development",
		"Expert",
		"%Proxy%", "%Proxy%", "%Proxy%",
		20, 40,
	}, q.pageArgs)

	assert.Contains(t, q.countSQL, "category = $1")
	assert.Equal(t, q.pageArgs[:5], q.countArgs)
}

func TestBuildSearchQueryOffsetNeverOverflows(t *testing.T) {
	for _, limit := range []int{1, 7, 10, 1 << 20, math.MaxInt} {
		q, err := buildSearchQuery(models.SearchFilters{}, math.MaxInt, limit)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, q.offset, 0, "limit %d", limit)
		assert.Equal(t, []any{limit, q.offset}, q.pageArgs)
	}
}

func TestBuildSearchQuerySingleFilter(t *testing.T) {
	q, err := buildSearchQuery(models.SearchFilters{Expertise: "Entry"}, 1, 10)
	require.NoError(t, err)

	assert.Contains(t, q.pageSQL, "WHERE (expertise = $1)")
	assert.NotContains(t, q.pageSQL, "category =")
	assert.NotContains(t, q.pageSQL, "ILIKE")
	assert.Equal(t, []any{"Entry", 10, 0}, q.pageArgs)
}

func TestSearchTextIsMatchedLiterally(t *testing.T) {
	q, err := buildSearchQuery(models.SearchFilters{Search: `50%_off\`}, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, `%50\%\_off\\%`, q.pageArgs[0])
	assert.NotContains(t, q.pageSQL, "50%")
}

func TestSearchTextIsNeverInterpolated(t *testing.T) {
	injection := "'; DROP TABLE jobs; --"
	q, err := buildSearchQuery(models.SearchFilters{Category: injection, Search: injection}, 1, 10)
	require.NoError(t, err)

	assert.NotContains(t, q.pageSQL, "DROP")
	assert.NotContains(t, q.countSQL, "DROP")
	assert.Equal(t, injection, q.pageArgs[0])
}
