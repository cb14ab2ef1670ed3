package repository

import (
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"shenanigigs/jobstore/internal/database/schema"
	"shenanigigs/jobstore/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type searchQuery struct {
	page   int
	limit  int
	offset int

	pageSQL  string
	pageArgs []any

	countSQL  string
	countArgs []any
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	// Keep (page-1)*limit from overflowing into a negative OFFSET.
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt/limit + 1
	}
	return page, limit
}

// searchPredicate combines every supplied filter with AND. Empty filters
// are absent; the text filter matches title, description or long
// description case-insensitively as a literal substring.
func searchPredicate(filters models.SearchFilters) sq.And {
	where := sq.And{}
	if filters.Category != "" {
		where = append(where, sq.Eq{"category": filters.Category})
	}
	if filters.Expertise != "" {
		where = append(where, sq.Eq{"expertise": filters.Expertise})
	}
	if filters.Search != "" {
		pattern := "%" + likeEscaper.Replace(filters.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"long_description": pattern},
		})
	}
	return where
}

func buildSearchQuery(filters models.SearchFilters, page, limit int) (searchQuery, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit
	where := searchPredicate(filters)

	columns := append(append([]string{}, jobColumns...), "COUNT(*) OVER() AS total_count")
	pageBuilder := psql.Select(columns...).
		From(schema.JobsTable).
		OrderBy("time_posted DESC", "id ASC").
		Suffix("LIMIT ? OFFSET ?", limit, offset)
	countBuilder := psql.Select("COUNT(*)").From(schema.JobsTable)
	if len(where) > 0 {
		pageBuilder = pageBuilder.Where(where)
		countBuilder = countBuilder.Where(where)
	}

	pageSQL, pageArgs, err := pageBuilder.ToSql()
	if err != nil {
		return searchQuery{}, err
	}
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return searchQuery{}, err
	}

	return searchQuery{
		page:      page,
		limit:     limit,
		offset:    offset,
		pageSQL:   pageSQL,
		pageArgs:  pageArgs,
		countSQL:  countSQL,
		countArgs: countArgs,
	}, nil
}
