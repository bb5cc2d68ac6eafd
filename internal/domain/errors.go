package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAccountCode = errors.New("invalid account code")
	ErrPieceNotFound      = errors.New("piece not found")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrInvalidEntry       = errors.New("invalid entry")
	ErrUnbalancedPiece    = errors.New("piece debits and credits do not balance")

	// Lettrage errors
	ErrLettrageTooFewEntries   = errors.New("lettrage requires at least two entries")
	ErrLettrageAccountMismatch = errors.New("lettrage entries must belong to the same account")
	ErrLettrageUnbalanced      = errors.New("lettrage entries do not balance")
	ErrAlreadyLettered         = errors.New("entry is already lettered")
	ErrLettrageNotFound        = errors.New("lettrage not found")
	ErrInvalidLettrageCode     = errors.New("invalid lettrage code")

	// Statement errors
	ErrInvalidBankAccount = errors.New("invalid bank account")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidStatus      = errors.New("invalid transaction status")

	// Query errors
	ErrUnknownSortField     = errors.New("unknown sort field")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	ErrInvalidDateRange     = errors.New("date range start is after its end")
	ErrInvalidAmountRange   = errors.New("invalid amount range")
)
