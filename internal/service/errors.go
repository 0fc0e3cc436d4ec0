package service

import "errors"

var (
	// ErrUnknownActor is returned when the acting user id does not resolve.
	ErrUnknownActor = errors.New("acting user not found")
	// ErrNotFound is returned when no article matches the request.
	ErrNotFound = errors.New("article not found")
	// ErrTitleConflict is returned when a title is already taken or reserved.
	ErrTitleConflict = errors.New("title already in use")
	// ErrForbidden is returned for operations the root page does not allow.
	ErrForbidden = errors.New("operation not allowed on the home page")
	// ErrNotPublishedYet is returned when the home page swap target has no live version.
	ErrNotPublishedYet = errors.New("article has never been published")
	// ErrTemplateNotFound is returned when a template reference cannot be resolved.
	ErrTemplateNotFound = errors.New("template not found")
)
