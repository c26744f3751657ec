package governance

import (
	"sync"
	"time"

	"github.com/kpango/fastime"
	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/model"
)

// cooldownTracker rate limits governance actions per (target, action type)
// pair. Purely in memory, a restart clears all cooldowns.
type cooldownTracker struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func newCooldownTracker() *cooldownTracker {
	return &cooldownTracker{
		until: make(map[string]time.Time),
		now:   func() time.Time { return fastime.Now().UTC() },
	}
}

func cooldownKey(target string, actionType model.GovActionType) string {
	return target + "|" + actionType.String()
}

// Check returns a coded error carrying the retry-after time when the pair is
// still cooling down.
func (c *cooldownTracker) Check(target string, actionType model.GovActionType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	until, ok := c.until[cooldownKey(target, actionType)]
	if !ok {
		return nil
	}

	if c.now().Before(until) {
		return errors.NewCooldownActiveErr(target, actionType.String(), until)
	}

	delete(c.until, cooldownKey(target, actionType))

	return nil
}

// Mark starts a cooldown window for the pair. A zero duration is a no-op.
func (c *cooldownTracker) Mark(target string, actionType model.GovActionType, d time.Duration) {
	if d <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.until[cooldownKey(target, actionType)] = c.now().Add(d)
}
