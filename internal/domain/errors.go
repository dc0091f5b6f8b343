package domain

import "errors"

// Storage lookup errors
var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrChampionNotFound = errors.New("champion not found")
	ErrVersionNotSet    = errors.New("catalog version not set")
)
