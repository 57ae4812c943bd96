package state

// Feedback is a single-slot transient flag. Each Trigger starts a new
// generation; only the timer carrying the current generation may reset it,
// so a re-trigger supersedes any reset scheduled earlier.
type Feedback struct {
	active bool
	gen    uint64
}

// Active reports whether the flag is set.
func (f Feedback) Active() bool { return f.active }

// Trigger sets the flag and returns the generation the reset timer must carry.
func (f *Feedback) Trigger() uint64 {
	f.gen++
	f.active = true
	return f.gen
}

// Expire resets the flag if gen is still the current generation.
func (f *Feedback) Expire(gen uint64) bool {
	if !f.active || gen != f.gen {
		return false
	}
	f.active = false
	return true
}

// Cancel clears the flag and invalidates every outstanding generation.
func (f *Feedback) Cancel() {
	f.gen++
	f.active = false
}
