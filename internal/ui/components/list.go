package components

// List is a paged cursor over items. The cursor always stays inside the
// visible window of PageSize rows.
type List[T any] struct {
	Items    []T
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates an empty list showing pageSize rows, at least one.
func NewList[T any](pageSize int) *List[T] {
	return &List[T]{PageSize: max(pageSize, 1)}
}

// SetItems replaces the items and moves the cursor to the top.
func (l *List[T]) SetItems(items []T) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
}

// SetPageSize resizes the window without losing the cursor.
func (l *List[T]) SetPageSize(n int) {
	l.PageSize = max(n, 1)
	l.Select(l.Cursor)
}

// Select moves the cursor to idx, clamped, and scrolls it into view.
func (l *List[T]) Select(idx int) {
	if len(l.Items) == 0 {
		l.Cursor, l.Offset = 0, 0
		return
	}
	l.Cursor = min(max(idx, 0), len(l.Items)-1)
	l.Offset = min(l.Offset, l.Cursor)
	if l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
}

func (l *List[T]) Down() { l.Select(l.Cursor + 1) }

func (l *List[T]) Up() { l.Select(l.Cursor - 1) }

// Current returns the item under the cursor.
func (l *List[T]) Current() (T, bool) {
	var zero T
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return zero, false
	}
	return l.Items[l.Cursor], true
}

// Visible returns the items inside the window.
func (l *List[T]) Visible() []T {
	if len(l.Items) == 0 {
		return nil
	}
	end := min(l.Offset+l.PageSize, len(l.Items))
	return l.Items[l.Offset:end]
}

// Selected returns the cursor index.
func (l *List[T]) Selected() int {
	return l.Cursor
}

// IsSelected reports whether absIdx is the cursor.
func (l *List[T]) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts an index into Visible() to an index into Items.
func (l *List[T]) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}
