package matchsrv

import (
	"context"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate"
)

// FallbackSearch finds candidates by keyword when vector ranking is unavailable.
// It never fails: store errors produce an empty page.
type FallbackSearch struct {
	pool candidate.PoolReader
}

func NewFallbackSearch(pool candidate.PoolReader) *FallbackSearch {
	return &FallbackSearch{pool: pool}
}

// Search returns the profiles whose name or bio contains query and that satisfy
// filters, ordered by id
func (f *FallbackSearch) Search(
	ctx context.Context,
	filters candidate.Filters,
	query string,
	pagination kernel.PaginationOptions,
) *kernel.Paginated[candidate.Profile] {
	pagination = pagination.Normalize()

	page, err := f.pool.KeywordSearch(ctx, filters, query, pagination)
	if err != nil {
		logx.Warnf("Keyword search failed, returning empty page: query=%q err=%v", query, err)
		return kernel.NewPaginated([]candidate.Profile{}, pagination, 0)
	}
	if page == nil {
		return kernel.NewPaginated([]candidate.Profile{}, pagination, 0)
	}
	return page
}
