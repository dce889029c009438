package yatra

import "errors"

var ErrNotFound = errors.New("yatra not found")
