package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards calls to the remote price store. When the store is down a commit of
// hundreds of patches fails fast instead of waiting out the HTTP timeout once
// per item.
//
//   closed ──(FailureThreshold consecutive failures)──▶ open
//   open ──(OpenTimeout elapsed)──▶ half-open
//   half-open ──(SuccessThreshold successes)──▶ closed
//   half-open ──(any failure)──▶ open
//
// In half-open only one probe is in flight at a time; concurrent callers get
// ErrCircuitOpen until it settles.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters. Zero values take defaults.
type CircuitBreakerConfig struct {
	Name             string        // used in state-change logs
	FailureThreshold int           // default 5
	SuccessThreshold int           // default 2
	OpenTimeout      time.Duration // default 30s

	// IsFailure decides whether an error counts against the breaker. Nil means
	// every error does. Client-side rejections (4xx) should not trip it.
	IsFailure func(error) bool
}

// DefaultCBConfig returns the settings used for the price store client.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "price-store",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int // consecutive, closed state
	successes int // consecutive, half-open state
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(error) bool { return true }
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State reports the current state, moving open to half-open when due.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tick()
	return cb.state
}

// Execute runs fn unless the breaker is open. fn's error is returned as is.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probe, err := cb.allow()
	if err != nil {
		return err
	}
	err = fn()
	cb.record(probe, err)
	return err
}

func (cb *CircuitBreaker) allow() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tick()
	switch cb.state {
	case CBOpen:
		return false, ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			return false, ErrCircuitOpen
		}
		cb.probing = true
		return true, nil
	}
	return false, nil
}

func (cb *CircuitBreaker) record(probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if probe {
		cb.probing = false
	}
	failed := err != nil && cb.cfg.IsFailure(err)

	switch cb.state {
	case CBClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		if failed {
			cb.trip()
			return
		}
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.failures, cb.successes = 0, 0
			cb.moveTo(CBClosed)
		}
	}
}

// tick must be called under lock.
func (cb *CircuitBreaker) tick() {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.successes = 0
		cb.moveTo(CBHalfOpen)
	}
}

func (cb *CircuitBreaker) trip() {
	cb.openedAt = cb.now()
	cb.failures, cb.successes = 0, 0
	cb.moveTo(CBOpen)
}

func (cb *CircuitBreaker) moveTo(to CBState) {
	if cb.state == to {
		return
	}
	log.Warn().
		Str("breaker", cb.cfg.Name).
		Str("from", cb.state.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
	cb.state = to
}
