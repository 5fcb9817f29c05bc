package digest

// DefaultPageSize is the number of articles revealed per page.
const DefaultPageSize = 6

// Window is a growable prefix over the filtered articles. It only grows:
// changing the filter criteria keeps the current visible count.
type Window struct {
	pageSize int
	visible  int
}

func NewWindow(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize, visible: pageSize}
}

func (w *Window) PageSize() int {
	return w.pageSize
}

func (w *Window) Visible() int {
	return w.visible
}

// LoadMore reveals one more page. The visible count may exceed the number of
// filtered articles; Slice clamps.
func (w *Window) LoadMore() int {
	w.visible += w.pageSize
	return w.visible
}

func (w *Window) Slice(filtered []Article) []Article {
	if w.visible >= len(filtered) {
		return filtered
	}
	return filtered[:w.visible]
}

func (w *Window) HasMore(filteredLen int) bool {
	return w.visible < filteredLen
}
