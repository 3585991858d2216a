package gemini

import "errors"

var (
	ErrMissingAPIKey = errors.New("gemini: api key is not configured")
	ErrNoCandidates  = errors.New("gemini: response contained no candidates")
)

// BlockedError means the prompt or the generated candidate was withheld.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "gemini: content blocked: " + e.Reason
}
