package media

import "errors"

var (
	ErrNotFound        = errors.New("submission not found")
	ErrAlreadyReviewed = errors.New("submission already reviewed")
)
