package ai

import "errors"

var (
	ErrProviderUnavailable = errors.New("generative provider unavailable")
	ErrGenerationTimeout   = errors.New("generation timeout")
	ErrInvalidResponse     = errors.New("generative provider returned invalid response")
)
