package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTagNotFound     = errors.New("tag not found")
)
