package distribution

import "fmt"

// Pages are 1-indexed; page 0 is invalid.

// PageBounds returns the half-open index range [start, end) covered by a page.
func PageBounds(page, pageSize uint64) (start, end uint64, err error) {
	if page == 0 {
		return 0, 0, fmt.Errorf("%w: page must be greater than zero", ErrInvalidPage)
	}
	if pageSize == 0 {
		return 0, 0, fmt.Errorf("%w: page size must be greater than zero", ErrInvalidPage)
	}
	start = (page - 1) * pageSize
	end = start + pageSize
	return start, end, nil
}

// IsLastPage reports whether a page is the final one for the given total.
func IsLastPage(page, pageSize, total uint64) (bool, error) {
	_, end, err := PageBounds(page, pageSize)
	if err != nil {
		return false, err
	}
	return end >= total, nil
}

// PageItemCount returns how many records the page holds for the given total.
func PageItemCount(page, pageSize, total uint64) (uint64, error) {
	start, end, err := PageBounds(page, pageSize)
	if err != nil {
		return 0, err
	}
	if start >= total {
		return 0, nil
	}
	if end > total {
		end = total
	}
	return end - start, nil
}

// PageCount returns the number of pages needed to cover total records.
func PageCount(total, pageSize uint64) uint64 {
	if pageSize == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
