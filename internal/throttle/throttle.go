package throttle

import (
	"sync"
	"time"
)

// Config holds per-session throttle settings
type Config struct {
	Enabled  bool          // Whether throttling is enabled
	MaxSeeds int           // Max seeds a session may show in the window
	Window   time.Duration // Sliding window length
}

// DefaultConfig returns sensible defaults for viewer sessions
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		MaxSeeds: 20,
		Window:   10 * time.Second,
	}
}

// ConfigFromYAML creates a Config from YAML-loaded values
func ConfigFromYAML(enabled bool, maxSeeds, windowSeconds int) Config {
	cfg := DefaultConfig()
	cfg.Enabled = enabled
	if maxSeeds > 0 {
		cfg.MaxSeeds = maxSeeds
	}
	if windowSeconds > 0 {
		cfg.Window = time.Duration(windowSeconds) * time.Second
	}
	return cfg
}

// Tracker tracks how fast one session asks for ships
type Tracker struct {
	mu     sync.Mutex
	config Config
	times  []time.Time // Timestamps of recent requests
	now    func() time.Time
}

// NewTracker creates a new tracker with the given config
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config: config,
		times:  make([]time.Time, 0, max(config.MaxSeeds, 0)),
		now:    time.Now,
	}
}

// CheckResult contains the result of a throttle check
type CheckResult struct {
	Allowed     bool
	Reason      string
	WaitSeconds int // How long to wait before trying again (if not allowed)
}

// Check records a request if it fits in the window.
func (t *Tracker) Check() CheckResult {
	if !t.config.Enabled {
		return CheckResult{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.cleanup(now)

	if len(t.times) >= t.config.MaxSeeds {
		// Wait until the oldest request leaves the window
		remaining := t.times[0].Add(t.config.Window).Sub(now)
		return CheckResult{
			Allowed:     false,
			Reason:      "too many ships requested, slow down",
			WaitSeconds: int(remaining.Seconds()) + 1,
		}
	}

	t.times = append(t.times, now)
	return CheckResult{Allowed: true}
}

// cleanup removes requests outside the window
func (t *Tracker) cleanup(now time.Time) {
	cutoff := now.Add(-t.config.Window)
	kept := t.times[:0]
	for _, at := range t.times {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	t.times = kept
}

// Reset clears all tracking data
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.times = t.times[:0]
}
