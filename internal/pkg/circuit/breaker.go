// Package circuit keeps a failing venue out of the price aggregate until it
// has had time to recover.
package circuit

import (
	"sync"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Breaker opens after threshold consecutive failures. Once cooldown has
// passed a single probe call is let through: its success closes the breaker,
// its failure restarts the cooldown.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	nowFn     func() time.Time

	mu       sync.Mutex
	state    State
	streak   int
	openedAt time.Time
	probing  bool
}

func New(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, nowFn: time.Now}
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may go out now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	if b.state == StateOpen && b.nowFn().Sub(b.openedAt) >= b.cooldown {
		b.moveTo(StateHalfOpen)
	}
	if b.state == StateHalfOpen && !b.probing {
		b.probing = true
		return true
	}
	return false
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streak = 0
	b.probing = false
	if b.state != StateClosed {
		b.moveTo(StateClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streak++
	b.probing = false
	if b.state == StateHalfOpen || (b.state == StateClosed && b.streak >= b.threshold) {
		b.openedAt = b.nowFn()
		b.moveTo(StateOpen)
	}
}

func (b *Breaker) moveTo(next State) {
	if b.state == next {
		return
	}
	logger.Warnf("venue breaker %s: %s -> %s (streak=%d threshold=%d cooldown=%s)",
		b.name, b.state, next, b.streak, b.threshold, b.cooldown)
	b.state = next
}
