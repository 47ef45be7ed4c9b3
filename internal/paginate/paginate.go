// Package paginate slices ordered collections into fixed-size pages.
//
// Requested page numbers come straight from a query parameter, so parsing and
// clamping live here: anything non-numeric clamps to the first page, anything
// past the end clamps to the last. Callers count first, ask for a page, then
// query with the returned offset and limit.
package paginate

import "strconv"

// Paginator describes one ordered collection being paged.
type Paginator struct {
	Count    int64
	PageSize int
}

// PageInfo is the resolved window for one page plus what a template needs to
// render prev/next navigation.
type PageInfo struct {
	Number   int
	NumPages int
	Count    int64
	Offset   int
	Limit    int
	HasNext  bool
	HasPrev  bool
}

// PageOf bundles a PageInfo with the items fetched for it.
type PageOf[T any] struct {
	PageInfo
	Items []T
}

// NumPages reports the total number of pages. An empty collection still has
// one (empty) page.
func (p Paginator) NumPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	n := int((p.Count + int64(p.PageSize) - 1) / int64(p.PageSize))
	if n < 1 {
		n = 1
	}
	return n
}

// Page resolves a raw page-number parameter into a valid window. Absent,
// non-numeric or sub-1 values clamp to page 1; values past the last page
// clamp to the last page.
func (p Paginator) Page(raw string) PageInfo {
	num := 1
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		num = n
	}
	total := p.NumPages()
	if num > total {
		num = total
	}

	size := p.PageSize
	if size <= 0 {
		size = 1
	}
	offset := (num - 1) * size

	return PageInfo{
		Number:   num,
		NumPages: total,
		Count:    p.Count,
		Offset:   offset,
		Limit:    size,
		HasNext:  num < total,
		HasPrev:  num > 1,
	}
}

// Slice pages an in-memory collection, for listings that are not backed by an
// offset query.
func Slice[T any](items []T, pageSize int, raw string) PageOf[T] {
	info := Paginator{Count: int64(len(items)), PageSize: pageSize}.Page(raw)
	lo := info.Offset
	if lo > len(items) {
		lo = len(items)
	}
	hi := lo + info.Limit
	if hi > len(items) {
		hi = len(items)
	}
	return PageOf[T]{PageInfo: info, Items: items[lo:hi]}
}
