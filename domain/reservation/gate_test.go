package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryWithFlags(trigger, confirmed string, hasConfirmedColumn bool) CorrelatedEntry {
	row := baseRow()
	row[ColPurchaseTrigger] = trigger
	if hasConfirmedColumn {
		row[ColPurchasedConfirmed] = confirmed
	}
	rec, _, _ := ParseRow(1, row)
	return CorrelatedEntry{Row: row, Record: rec, Quote: Quote{OrderID: "order-1"}}
}

func TestGateAffirmativeVariants(t *testing.T) {
	for _, v := range []string{"1", "y", "Y", "yes", "Yes", " YES "} {
		eligible, skips := Gate([]CorrelatedEntry{entryWithFlags(v, v, true)})
		assert.Len(t, eligible, 1, v)
		assert.Zero(t, skips.Total(), v)
	}
}

func TestGateMissingTriggerSkips(t *testing.T) {
	row := baseRow() // no trigger column at all
	rec, _, _ := ParseRow(1, row)

	eligible, skips := Gate([]CorrelatedEntry{{Row: row, Record: rec}})
	assert.Empty(t, eligible)
	assert.Equal(t, 1, skips.NoTrigger)
	assert.Zero(t, skips.NoConfirmation)
}

func TestGateNonAffirmativeTriggerSkips(t *testing.T) {
	for _, v := range []string{"", "no", "maybe", "0", "true"} {
		eligible, skips := Gate([]CorrelatedEntry{entryWithFlags(v, "yes", true)})
		assert.Empty(t, eligible, v)
		assert.Equal(t, 1, skips.NoTrigger, v)
	}
}

func TestGateConfirmationOnlyCheckedWhenColumnPresent(t *testing.T) {
	eligible, skips := Gate([]CorrelatedEntry{entryWithFlags("yes", "", false)})
	assert.Len(t, eligible, 1)
	assert.Zero(t, skips.Total())

	eligible, skips = Gate([]CorrelatedEntry{entryWithFlags("yes", "", true)})
	assert.Empty(t, eligible)
	assert.Equal(t, 1, skips.NoConfirmation)
}

func TestGateTriggerCheckedFirst(t *testing.T) {
	// Both flags negative: only the trigger counter moves.
	eligible, skips := Gate([]CorrelatedEntry{entryWithFlags("no", "no", true)})
	assert.Empty(t, eligible)
	assert.Equal(t, 1, skips.NoTrigger)
	assert.Zero(t, skips.NoConfirmation)
}

func TestGateAccountsForEveryEntry(t *testing.T) {
	entries := []CorrelatedEntry{
		entryWithFlags("yes", "yes", true),
		entryWithFlags("no", "yes", true),
		entryWithFlags("yes", "no", true),
		entryWithFlags("", "", true),
		entryWithFlags("1", "y", true),
	}
	eligible, skips := Gate(entries)
	require.Equal(t, len(entries), len(eligible)+skips.NoTrigger+skips.NoConfirmation)
	assert.Len(t, eligible, 2)
	assert.Equal(t, 2, skips.NoTrigger)
	assert.Equal(t, 1, skips.NoConfirmation)
}
