package station

import "strconv"

// DefaultIDPrefix is prepended to the sequence number of generated stations
const DefaultIDPrefix = "PS"

// IDAllocator hands out PS1, PS2, ... in call order with no gaps
type IDAllocator struct {
	prefix string
	issued int
}

func NewIDAllocator(prefix string) *IDAllocator {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return &IDAllocator{prefix: prefix}
}

// Next returns the next identifier
func (a *IDAllocator) Next() string {
	a.issued++
	return a.prefix + strconv.Itoa(a.issued)
}

// Issued returns how many identifiers have been handed out
func (a *IDAllocator) Issued() int {
	return a.issued
}
