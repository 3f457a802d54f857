package platform

import (
	"errors"
)

var (
	// ErrUnknownStore is returned when selected store is not listed in catalog.
	ErrUnknownStore = errors.New("store not listed in catalog")
	// ErrItemNotFound is returned when there is no flyer item or list entry with requested id.
	ErrItemNotFound = errors.New("item not found")
)
