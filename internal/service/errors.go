package service

import "errors"

// Sentinels the error-handler middleware maps to HTTP statuses. Everything
// else coming out of a service is treated as an infrastructure failure.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("invalid request")
)
