package random

import (
	"fmt"

	"github.com/mazen160/go-random"
)

type API interface {
	// SessionID returns a short random identifier for one watch session.
	SessionID() (string, error)
}

type StandardImpl struct{}

func (StandardImpl) SessionID() (string, error) {
	id, err := random.String(8)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return id, nil
}

// Static always returns the same id.
type Static string

func (s Static) SessionID() (string, error) {
	return string(s), nil
}
