package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"graphboard/internal/common"
	"graphboard/internal/domain/repository"
)

const (
	keyFilterTaskIdentifier = "filters[taskIdentifier]"
	keyFilterQueueName      = "filters[queueName]"
	keyOrderDirection       = "order[direction]"
	keyOrderField           = "order[field]"
	keyPage                 = "pagination[page]"
	keyItemsPerPage         = "pagination[itemsPerPage]"
)

var knownQueryKeys = []string{
	keyFilterTaskIdentifier, keyFilterQueueName,
	keyOrderDirection, keyOrderField,
	keyPage, keyItemsPerPage,
}

// parseFindJobsParams decodes the bracketed query string of GET /api/jobs.
// Unknown keys are ignored; known keys must be well formed.
func parseFindJobsParams(rawQuery string) (repository.FindJobsParams, error) {
	var params repository.FindJobsParams

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return params, &common.QueryError{
			Code:    common.QueryErrParse,
			Message: err.Error(),
			Data:    map[string]any{"pos": malformedPos(rawQuery)},
		}
	}

	for _, key := range knownQueryKeys {
		vs, ok := values[key]
		if !ok {
			continue
		}
		if len(vs) > 1 {
			return params, &common.QueryError{
				Code:    common.QueryErrUnsupported,
				Message: fmt.Sprintf("duplicate field `%s`", key),
			}
		}
		if !utf8.ValidString(vs[0]) {
			return params, invalidUTF8(vs[0])
		}
	}

	params.Filters.TaskIdentifier = values.Get(keyFilterTaskIdentifier)
	params.Filters.QueueName = values.Get(keyFilterQueueName)

	order, err := parseOrder(values)
	if err != nil {
		return params, err
	}
	params.Order = order

	page, err := parseUintParam(values, keyPage)
	if err != nil {
		return params, err
	}
	itemsPerPage, err := parseUintParam(values, keyItemsPerPage)
	if err != nil {
		return params, err
	}
	if page != nil || itemsPerPage != nil {
		params.Pagination = &repository.Pagination{Page: page, ItemsPerPage: itemsPerPage}
	}

	return params, nil
}

func parseOrder(values url.Values) (*repository.Order[repository.JobOrderField], error) {
	_, hasDirection := values[keyOrderDirection]
	_, hasField := values[keyOrderField]
	switch {
	case !hasDirection && !hasField:
		return nil, nil
	case !hasDirection:
		return nil, &common.QueryError{Code: common.QueryErrCustom, Message: "missing field `direction`"}
	case !hasField:
		return nil, &common.QueryError{Code: common.QueryErrCustom, Message: "missing field `field`"}
	}

	direction, err := repository.ParseOrderDirection(values.Get(keyOrderDirection))
	if err != nil {
		return nil, &common.QueryError{Code: common.QueryErrCustom, Message: err.Error()}
	}
	field, err := repository.ParseJobOrderField(values.Get(keyOrderField))
	if err != nil {
		return nil, &common.QueryError{Code: common.QueryErrCustom, Message: err.Error()}
	}
	return &repository.Order[repository.JobOrderField]{Field: field, Direction: direction}, nil
}

func parseUintParam(values url.Values, key string) (*uint64, error) {
	if _, ok := values[key]; !ok {
		return nil, nil
	}
	n, err := strconv.ParseUint(values.Get(key), 10, 64)
	if err != nil {
		msg := err.Error()
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			msg = fmt.Sprintf("%s: %v", key, numErr.Err)
		}
		return nil, &common.QueryError{Code: common.QueryErrInt, Message: msg}
	}
	return &n, nil
}

func invalidUTF8(s string) *common.QueryError {
	validUpTo := 0
	for validUpTo < len(s) {
		r, size := utf8.DecodeRuneInString(s[validUpTo:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		validUpTo += size
	}
	return &common.QueryError{
		Code:    common.QueryErrUTF8,
		Message: "Invalid UTF8 string",
		Data:    map[string]any{"validUpTo": validUpTo},
	}
}

// malformedPos returns the byte offset of the first pair that cannot be
// unescaped, or -1.
func malformedPos(rawQuery string) int {
	pos := 0
	for _, pair := range strings.Split(rawQuery, "&") {
		if strings.Contains(pair, ";") {
			return pos
		}
		key, value, _ := strings.Cut(pair, "=")
		if _, err := url.QueryUnescape(key); err != nil {
			return pos
		}
		if _, err := url.QueryUnescape(value); err != nil {
			return pos + len(key) + 1
		}
		pos += len(pair) + 1
	}
	return -1
}
