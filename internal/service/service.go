// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take primitives and return domain values or apperror failures.
// They never see an *http.Request, so the same rules apply to every caller.
//
// ORDER OF CHECKS:
// Every operation on an existing post or comment runs in the same order:
//
//  1. load the resource       → apperror.ErrNotFound
//  2. auth.AssertOwner        → apperror.ErrUnauthorized
//  3. mutate
//
// A resource that does not exist is therefore reported as NotFound to every
// caller, owner or not.
package service

import (
	"github.com/sakif/community-forum/internal/repository"
)

// Page describes one slice of a paginated listing.
type Page struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// pageOptions converts a 1-based page number and page size into repository
// options, clamping both to sane values.
func pageOptions(page, size int) (repository.ListOptions, Page) {
	if page < 1 {
		page = 1
	}
	limit, _ := repository.ListOptions{Limit: size}.Normalize()
	return repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}, Page{Page: page, Size: limit}
}
