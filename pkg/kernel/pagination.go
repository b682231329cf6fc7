package kernel

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationOptions is the page request shared by list endpoints
type PaginationOptions struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"page_size" query:"page_size"`
}

// Normalize fills in defaults and clamps the page size
func (p PaginationOptions) Normalize() PaginationOptions {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of items preceding the requested page
func (p PaginationOptions) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"page"`
	Empty bool `json:"empty"`
}

// NewPaginated builds a page envelope for items already sliced by the caller
func NewPaginated[T any](items []T, opts PaginationOptions, total int) *Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return &Paginated[T]{
		Items: items,
		Page: Page{
			Number: opts.Page,
			Size:   opts.PageSize,
			Total:  total,
			Pages:  (total + opts.PageSize - 1) / opts.PageSize,
		},
		Empty: len(items) == 0,
	}
}

// Paginate slices an in-memory list. Total is the length of the full list.
func Paginate[T any](all []T, opts PaginationOptions) *Paginated[T] {
	opts = opts.Normalize()
	total := len(all)

	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	page := make([]T, end-start)
	copy(page, all[start:end])
	return NewPaginated(page, opts, total)
}
