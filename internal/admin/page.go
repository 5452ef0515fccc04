package admin

// DefaultPageSize is the number of rows per listing page.
const DefaultPageSize = 10

// Page returns the 1-based page of items. Out-of-range page numbers are
// clamped; a size below one means DefaultPageSize. pages is never less
// than one, so an empty listing is "page 1 of 1".
func Page[T any](items []T, page, size int) (rows []T, pages, current int) {
	if size < 1 {
		size = DefaultPageSize
	}
	pages = (len(items) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	current = min(max(page, 1), pages)

	start := min((current-1)*size, len(items))
	end := min(start+size, len(items))
	return items[start:end], pages, current
}
