package audio

import "errors"

// Sentinel errors
var (
	ErrNoAudioDevice     = errors.New("audio: no output device")
	ErrUnsupportedFormat = errors.New("audio: unsupported asset format")
	ErrUnknownSound      = errors.New("audio: unknown sound")
)
