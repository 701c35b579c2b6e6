package models

// Page is a paginated result in the shape the public catalog clients expect
type Page[T any] struct {
	Data        []T  `json:"data"`
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// NewPage builds page metadata. From/To are 1-based positions of the first
// and last item, nil when the page is empty.
func NewPage[T any](items []T, total, page, perPage int) *Page[T] {
	if items == nil {
		items = []T{}
	}

	lastPage := 1
	if total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}

	p := &Page[T]{
		Data:        items,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}

	if len(items) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(items) - 1
		p.From = &from
		p.To = &to
	}

	return p
}
