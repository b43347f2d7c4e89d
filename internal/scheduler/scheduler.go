// Package scheduler runs background work in small slices between
// foreground events.
//
// Long jobs such as re-highlighting or searching a large text are split
// into slices bounded by a character budget. A Scheduler runs one slice per
// idle period and keeps rescheduling while the work reports more to do.
// Foreground edits never wait behind a slice: they run to completion, and
// the job adjusts its bookkeeping before its next slice.
package scheduler

// Scheduler drives a chunked background job.
type Scheduler interface {
	// Init sets the job. work runs one slice and reports whether more
	// work remains. done runs after a batch of slices, with possibly more
	// to come later. done may be nil.
	Init(work func() bool, done func())

	// Schedule asks for work to run later. Scheduling an already
	// scheduled job is a no-op.
	Schedule()

	// Cancel drops the pending request, if any.
	Cancel()
}

// Sync is a Scheduler that runs the whole job inside Schedule. It suits
// tests and command-line tools that want the final result right away.
type Sync struct {
	work    func() bool
	done    func()
	running bool
}

// Init implements Scheduler.
func (s *Sync) Init(work func() bool, done func()) {
	s.work = work
	s.done = done
}

// Schedule implements Scheduler.
func (s *Sync) Schedule() {
	if s.work == nil {
		panic("scheduler: Schedule before Init")
	}
	if s.running {
		return
	}
	s.running = true
	for s.work() {
	}
	s.running = false
	if s.done != nil {
		s.done()
	}
}

// Cancel implements Scheduler.
func (s *Sync) Cancel() {}
