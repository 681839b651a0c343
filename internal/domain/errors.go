package domain

import "errors"

var (
	// Validation rejections: the pipeline leaves the log untouched.
	ErrEmptyMessage    = errors.New("empty message")
	ErrNoShapeSelected = errors.New("no shape selected")
	ErrNoAPIKey        = errors.New("api key not configured")

	// ErrBusy rejects a send while another is awaiting its response.
	ErrBusy = errors.New("send already in flight")

	ErrUserNotFound    = errors.New("user not found")
	ErrShapeNotFound   = errors.New("shape not found")
	ErrShapeExists     = errors.New("shape already registered")
	ErrShapeLimit      = errors.New("shape limit reached")
	ErrInvalidShapeURL = errors.New("invalid shape reference url")
)
