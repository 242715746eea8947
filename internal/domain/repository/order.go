package repository

import (
	"fmt"
	"math"
)

const (
	DefaultItemsPerPage = 20
	MaxItemsPerPage     = 100
)

type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

func ParseOrderDirection(s string) (OrderDirection, error) {
	switch OrderDirection(s) {
	case OrderAsc, OrderDesc:
		return OrderDirection(s), nil
	}
	return "", fmt.Errorf("unknown variant `%s`, expected `asc` or `desc`", s)
}

// OrderField is a sortable field that knows its column name. Implementations
// must be closed enumerations: SQLIdent is spliced into SQL text.
type OrderField interface {
	comparable
	SQLIdent() string
}

type Order[F OrderField] struct {
	Field     F
	Direction OrderDirection
}

func (o Order[F]) SQL() string {
	if o.Direction == OrderDesc {
		return o.Field.SQLIdent() + " desc"
	}
	return o.Field.SQLIdent() + " asc"
}

// OrderSQL renders an ORDER BY expression, falling back to defaultField
// ascending when no order was requested.
func OrderSQL[F OrderField](o *Order[F], defaultField F) string {
	if o == nil {
		return Order[F]{Field: defaultField, Direction: OrderAsc}.SQL()
	}
	return o.SQL()
}

type JobOrderField int

const (
	JobOrderTaskIdentifier JobOrderField = iota
	JobOrderRunAt
)

func ParseJobOrderField(s string) (JobOrderField, error) {
	switch s {
	case "taskIdentifier":
		return JobOrderTaskIdentifier, nil
	case "runAt":
		return JobOrderRunAt, nil
	}
	return 0, fmt.Errorf("unknown variant `%s`, expected `taskIdentifier` or `runAt`", s)
}

func (f JobOrderField) SQLIdent() string {
	switch f {
	case JobOrderTaskIdentifier:
		return "task_identifier"
	case JobOrderRunAt:
		return "run_at"
	}
	panic(fmt.Sprintf("repository: unmapped JobOrderField %d", int(f)))
}

// Pagination is optional at every level: a nil *Pagination and nil fields
// both fall back to the defaults.
type Pagination struct {
	ItemsPerPage *uint64
	Page         *uint64
}

func (p *Pagination) Limit() int64 {
	if p == nil || p.ItemsPerPage == nil {
		return DefaultItemsPerPage
	}
	return int64(min(max(*p.ItemsPerPage, 1), MaxItemsPerPage))
}

func (p *Pagination) Offset() int64 {
	if p == nil || p.Page == nil || *p.Page <= 1 {
		return 0
	}
	limit := p.Limit()
	skipped := *p.Page - 1
	// Saturate instead of overflowing the bigint OFFSET.
	if maxPages := uint64(math.MaxInt64 / limit); skipped > maxPages {
		skipped = maxPages
	}
	return int64(skipped) * limit
}
