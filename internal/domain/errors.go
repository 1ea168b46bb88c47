package domain

import "errors"

var (
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrNetwork               = errors.New("network error")
	ErrTimedOut              = errors.New("timed out")
	ErrServerRejected        = errors.New("server rejected")
	ErrNoMarket              = errors.New("no active market")
	ErrSnapshotUnavailable   = errors.New("snapshot unavailable")
	ErrNotFound              = errors.New("not found")
	ErrRateLimited           = errors.New("rate limited")
)
