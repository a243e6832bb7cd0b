package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTableTotality(t *testing.T) {
	states := []EscrowState{StatePending, StateFunded, StateReleased, StateDisputed, StateRefunded}

	allowed := map[EscrowState]map[EscrowState]bool{
		StatePending: {StateFunded: true},
		StateFunded:  {StateReleased: true, StateDisputed: true, StateRefunded: true},
	}

	for _, from := range states {
		for _, to := range states {
			want := allowed[from][to]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateFunded.Terminal())
	assert.True(t, StateReleased.Terminal())
	assert.True(t, StateDisputed.Terminal())
	assert.True(t, StateRefunded.Terminal())
}

func TestStateValid(t *testing.T) {
	for _, s := range []EscrowState{StatePending, StateFunded, StateReleased, StateDisputed, StateRefunded} {
		assert.True(t, s.Valid())
	}
	assert.False(t, EscrowState("EXPIRED").Valid())
	assert.False(t, EscrowState("").Valid())
}

func TestExpiredIsReadTimeObservation(t *testing.T) {
	expiry := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	account := &EscrowAccount{State: StatePending, ExpiresAt: expiry}

	assert.False(t, account.Expired(expiry.Add(-time.Hour)))
	assert.True(t, account.Expired(expiry.Add(time.Hour)))

	// Only pending accounts expire; funded ones wait for settlement.
	account.State = StateFunded
	assert.False(t, account.Expired(expiry.Add(time.Hour)))
}
