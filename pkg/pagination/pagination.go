package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any list call can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the configured defaults and maximum page size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Slice applies the params to an already-filtered, already-sorted total
// count and returns the [start, end) window clamped to the collection.
func Slice(total int, params Params) (start, end int) {
	n := params.Normalize()
	start = n.Offset()
	if start > total {
		start = total
	}
	end = start + n.PageSize
	if end > total {
		end = total
	}
	return start, end
}
