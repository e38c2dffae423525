package catalog

import "errors"

// ErrBookNotFound covers both missing and archived books.
var ErrBookNotFound = errors.New("book not found")
