package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single database transaction attempt.
	DefaultTransactionTimeout = 10 * time.Second

	// MaxStatementLines is the maximum number of lines accepted by one statement import.
	MaxStatementLines = 10000

	// IdempotencyKeyTTL is how long a replayable POST response is kept.
	IdempotencyKeyTTL = 24 * time.Hour
)
