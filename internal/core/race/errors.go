package race

import "errors"

// World
var (
	ErrNoTrack       = errors.New("no level is running")
	ErrInvalidLevel  = errors.New("invalid level")
	ErrNoLevels      = errors.New("level table is empty")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Settings
var (
	ErrInvalidSettings = errors.New("invalid race settings")
)
