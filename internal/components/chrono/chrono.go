package chrono

import (
	"sync"
	"time"
)

type API interface {
	Now() time.Time
}

// StandardImpl reads the wall clock in UTC, event timestamps are printed
// in UTC so readings from different machines line up.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now().UTC()
}

// FixedImpl returns a settable instant, for tests.
type FixedImpl struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedImpl(now time.Time) *FixedImpl {
	return &FixedImpl{now: now}
}

func (f *FixedImpl) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}
