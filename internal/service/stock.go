package service

import "threadline/internal/domain"

// SizeAvailable reports whether the size bucket holds at least the
// requested quantity. A size key absent from the map counts as zero
// stock. Both the add and update paths use this same predicate.
func SizeAvailable(sizes map[domain.Size]int, size domain.Size, quantity int) bool {
	return quantity <= sizes[size]
}
