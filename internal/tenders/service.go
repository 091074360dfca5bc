package tenders

import (
	"context"

	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/pagination"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type fetcher interface {
	FetchPage(ctx context.Context, page int, province string) ([]Release, error)
}

// ServiceParams groups dependencies for the tender search service.
type ServiceParams struct {
	Fetcher fetcher
}

// Service runs the fetch, filter, sort, paginate pipeline over the OCDS feed.
type Service interface {
	Search(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	fetcher fetcher
}

// NewService builds a tender search service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fetcher is required")
	}
	return &service{fetcher: params.Fetcher}, nil
}

// Search fetches one upstream page, then filters, sorts, and paginates it.
// Filtering and sorting happen over the fetched page, matching how the feed
// is browsed; the total reflects the filtered count.
func (s *service) Search(ctx context.Context, input Input) (*Result, error) {
	page := pagination.NormalizePage(input.Page, input.PageSize, defaultPageSize, maxPageSize)

	releases, err := s.fetcher.FetchPage(ctx, 1, input.Province)
	if err != nil {
		return nil, err
	}

	filtered := Filter(releases, input.Filters)
	Sort(filtered, input.Filters.SortBy)

	total := len(filtered)
	start, end := page.Slice(total)

	return &Result{
		Releases:   filtered[start:end],
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Size),
		Page:       page.Number,
		PageSize:   page.Size,
	}, nil
}
