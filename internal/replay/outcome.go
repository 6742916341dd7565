package replay

// Outcome is the derived match result. Slot indices are -1 when the
// corresponding side could not be determined.
type Outcome struct {
	WinnerSlot int
	LoserSlot  int
}

// Determined reports whether a winner was resolved.
func (o Outcome) Determined() bool { return o.WinnerSlot >= 0 }

// UnknownOutcome is the result when the signals do not pin down a
// winner.
var UnknownOutcome = Outcome{WinnerSlot: -1, LoserSlot: -1}

// ResolveOutcome reduces the ordered signal sequence against the
// declared slot set. Each left or defeated signal removes its slot from
// the active set. The winner is the single slot left active at stream
// end; the loser is only named in a two-participant game, where it is
// the most recently removed slot. No signals, zero survivors, or two or
// more survivors all mean the outcome is unknown.
func ResolveOutcome(signals []OutcomeSignal, slots []SlotDeclaration) Outcome {
	if len(signals) == 0 || len(slots) < 2 {
		return UnknownOutcome
	}

	active := make(map[int]bool, len(slots))
	for _, s := range slots {
		active[s.Index] = true
	}

	lastRemoved := -1
	for _, sig := range signals {
		if active[sig.Slot] {
			delete(active, sig.Slot)
			lastRemoved = sig.Slot
		}
	}

	if len(active) != 1 {
		return UnknownOutcome
	}

	out := UnknownOutcome
	for slot := range active {
		out.WinnerSlot = slot
	}
	if len(slots) == 2 && lastRemoved >= 0 {
		out.LoserSlot = lastRemoved
	}
	return out
}
