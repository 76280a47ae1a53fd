// Package entity defines the entities and errors used in the application.
// It includes the slug and URL records that back a shortened link, the visit
// events recorded on every redirect and the metadata extracted from a page.
package entity

import "errors"

var (
	// ErrSlugConflict is returned when a slug is already taken by another link.
	ErrSlugConflict = errors.New("slug already exists")
	// ErrSlugNotFound is returned when no slug record matches the requested slug.
	ErrSlugNotFound = errors.New("slug not found")
	// ErrURLNotFound is returned when a URL record with the specified id cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrExtractionFailure is returned when page metadata cannot be fetched or parsed.
	ErrExtractionFailure = errors.New("failed to extract metadata")
)
