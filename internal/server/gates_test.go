package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestClientLimiter_EvictsIdleClients(t *testing.T) {
	l := NewClientLimiter(1, 1)

	stale := time.Now().Add(-2 * limiterIdleTTL)
	for i := range limiterPruneSize {
		l.limiters[fmt.Sprintf("10.1.%d.%d", i/256, i%256)] = &clientEntry{
			lim:      rate.NewLimiter(l.rps, l.burst),
			lastSeen: stale,
		}
	}

	// Admitting a new client at capacity sweeps the idle entries.
	l.limiterFor("10.99.0.1")

	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.99.0.1")
}

func TestClientLimiter_KeepsActiveClientsOnPrune(t *testing.T) {
	l := NewClientLimiter(1, 1)

	stale := time.Now().Add(-2 * limiterIdleTTL)
	for i := range limiterPruneSize - 1 {
		l.limiters[fmt.Sprintf("10.1.%d.%d", i/256, i%256)] = &clientEntry{
			lim:      rate.NewLimiter(l.rps, l.burst),
			lastSeen: stale,
		}
	}
	l.limiterFor("10.2.0.1") // active, map now at capacity

	l.limiterFor("10.99.0.1")

	assert.Contains(t, l.limiters, "10.2.0.1")
	assert.Contains(t, l.limiters, "10.99.0.1")
	assert.Len(t, l.limiters, 2)
}

func TestClientLimiter_SameClientReusesBucket(t *testing.T) {
	l := NewClientLimiter(1, 1)

	first := l.limiterFor("10.0.0.1")
	second := l.limiterFor("10.0.0.1")

	assert.Same(t, first, second)
	assert.Len(t, l.limiters, 1)
}

func TestStaticTokenValidator(t *testing.T) {
	v := StaticTokenValidator{Token: "secret"}

	assert.True(t, v.Validate("secret"))
	assert.False(t, v.Validate("wrong"))
	assert.False(t, v.Validate(""))
}

func TestStaticTokenValidator_EmptyTokenNeverMatches(t *testing.T) {
	v := StaticTokenValidator{}
	assert.False(t, v.Validate(""))
}
