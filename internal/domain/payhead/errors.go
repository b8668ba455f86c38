package payhead

import "errors"

var (
	ErrPayheadNotFound = errors.New("payhead not found")
)
