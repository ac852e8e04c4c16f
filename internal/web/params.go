package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
	"github.com/evcraddock/realty/internal/property"
)

// idParam parses a positive integer path parameter. A malformed id is
// reported as not found.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		notFound(c)
		return 0, false
	}
	return id, true
}

// query reads typed query parameters, remembering the first failure.
type query struct {
	c   *gin.Context
	err error
}

func (q *query) str(key string) string {
	return strings.TrimSpace(q.c.Query(key))
}

func (q *query) fail(key string, err error) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (q *query) integer(key string) *int {
	v := q.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &n
}

func (q *query) number(key string) *float64 {
	v := q.str(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &f
}

func (q *query) boolean(key string) *bool {
	v := q.str(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &b
}

func (q *query) date(key string) *time.Time {
	v := q.str(key)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	q.fail(key, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", v))
	return nil
}

func (q *query) page() paging.Params {
	var p paging.Params
	if n := q.integer("pageNumber"); n != nil {
		p.PageNumber = *n
	}
	if n := q.integer("pageSize"); n != nil {
		p.PageSize = *n
	}
	return p
}

// done writes a 400 if any parameter failed to parse.
func (q *query) done() bool {
	if q.err != nil {
		apiError(q.c, http.StatusBadRequest, q.err.Error())
		return false
	}
	return true
}

// enum parses a name or integer value with parse.
func enum[T any](q *query, key string, parse func(string) (T, error)) *T {
	v := q.str(key)
	if v == "" {
		return nil
	}
	t, err := parse(v)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &t
}

func propertyFilter(c *gin.Context) (property.Filter, bool) {
	q := &query{c: c}
	f := property.Filter{
		SearchTerm:  q.str("searchTerm"),
		Type:        enum(q, "type", models.ParsePropertyType),
		Status:      enum(q, "status", models.ParsePropertyStatus),
		Transaction: enum(q, "transaction", models.ParseTransactionType),
		MinPrice:    q.number("minPrice"),
		MaxPrice:    q.number("maxPrice"),
		MinArea:     q.number("minArea"),
		MaxArea:     q.number("maxArea"),
		MinBedrooms: q.integer("minBedrooms"),
		MaxBedrooms: q.integer("maxBedrooms"),
		City:        q.str("city"),
		IsFeatured:  q.boolean("isFeatured"),
		SortBy:      q.str("sortBy"),
		SortOrder:   q.str("sortOrder"),
		Params:      q.page(),
	}
	return f, q.done()
}

func inquiryFilter(c *gin.Context) (inquiry.Filter, bool) {
	q := &query{c: c}
	var propertyID *int64
	if n := q.integer("propertyId"); n != nil {
		id := int64(*n)
		propertyID = &id
	}
	f := inquiry.Filter{
		Status:     enum(q, "status", models.ParseInquiryStatus),
		PropertyID: propertyID,
		Params:     q.page(),
	}
	return f, q.done()
}

func userFilter(c *gin.Context) (account.Filter, bool) {
	q := &query{c: c}
	f := account.Filter{
		SearchTerm:  q.str("searchTerm"),
		IsActive:    q.boolean("isActive"),
		CreatedFrom: q.date("createdFrom"),
		CreatedTo:   q.date("createdTo"),
		SortBy:      q.str("sortBy"),
		SortOrder:   q.str("sortOrder"),
		Params:      q.page(),
	}
	if role := enum(q, "role", models.ParseRole); role != nil {
		f.Role = *role
	}
	return f, q.done()
}
