package reservation

import "strings"

// SkipCounts records why rows were withheld from purchase. Together with the
// eligible set it accounts for every correlated entry exactly once, so a
// run's disposition can be audited from the gate output alone.
type SkipCounts struct {
	NoTrigger      int
	NoConfirmation int
}

func (s SkipCounts) Total() int { return s.NoTrigger + s.NoConfirmation }

// Affirmative values for the purchase-trigger and purchased-confirmed flags.
var affirmative = map[string]bool{"1": true, "y": true, "yes": true}

func isAffirmative(v string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(v))]
}

// Gate filters entries down to those explicitly authorized for purchase.
// Two independent flags must both pass: the Purchase Trigger column must be
// affirmative (absent or blank counts as not set), and the Purchased
// Confirmed column, when the input carries it at all, must be affirmative
// too. Checks short-circuit trigger-first so each skipped entry lands in
// exactly one counter.
func Gate(entries []CorrelatedEntry) ([]CorrelatedEntry, SkipCounts) {
	var counts SkipCounts
	eligible := make([]CorrelatedEntry, 0, len(entries))
	for _, e := range entries {
		if !isAffirmative(e.Row[ColPurchaseTrigger]) {
			counts.NoTrigger++
			continue
		}
		if confirmed, ok := e.Row[ColPurchasedConfirmed]; ok && !isAffirmative(confirmed) {
			counts.NoConfirmation++
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible, counts
}
