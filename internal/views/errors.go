package views

import "errors"

var (
	ErrEmptyServiceName  = errors.New("service name is empty")
	ErrUnknownToggleMode = errors.New("unknown toggle mode")
)
