package session

import "errors"

var (
	ErrUnauthorized = errors.New("unknown or invalid credential")
	ErrExpired      = errors.New("session expired")
	ErrRevoked      = errors.New("session revoked")
	ErrNotFound     = errors.New("session not found")
)
