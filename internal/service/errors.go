package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("User with this email already exists.")
	ErrInvalidLink         = errors.New("invalid link")
	ErrInvalidFileID       = errors.New("invalid file id")
	ErrStorage             = errors.New("storage error")
	ErrUpstreamUnavailable = errors.New("storage unavailable")
	ErrMailSend            = errors.New("failed to send email")
)
