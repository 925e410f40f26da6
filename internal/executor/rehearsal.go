package executor

import "sync/atomic"

// Rehearsal switches every executor it is handed to into dry-run mode:
// mutating calls are logged and skipped.
type Rehearsal struct {
	on atomic.Bool
}

func NewRehearsal(enabled bool) *Rehearsal {
	r := &Rehearsal{}
	r.on.Store(enabled)
	return r
}

func (r *Rehearsal) Enabled() bool {
	return r != nil && r.on.Load()
}

func (r *Rehearsal) Set(enabled bool) {
	r.on.Store(enabled)
}
