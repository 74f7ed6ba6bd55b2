package bracket

import "errors"

var (
	ErrConfiguration  = errors.New("invalid bracket configuration")
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrInvalidWinner  = errors.New("winner is not part of this game")
	ErrInvalidResult  = errors.New("invalid game result")
	ErrLockContention = errors.New("bracket is being modified, retry later")
)
