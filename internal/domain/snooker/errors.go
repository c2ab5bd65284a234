package snooker

import "errors"

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchAlreadyCompleted   = errors.New("match already completed")
	ErrFixtureMismatch         = errors.New("players do not match fixture")
	ErrInvalidMatch            = errors.New("invalid match")
	ErrInvalidScoreline        = errors.New("invalid scoreline")
	ErrInvalidBreakAttribution = errors.New("break by non-match player")
	ErrInvalidBreakPoints      = errors.New("break points out of range")
	ErrGroupMismatch           = errors.New("group mismatch")
	ErrLedgerWrite             = errors.New("ledger write failed")
)
