package scheduler

// Idle is a Scheduler that runs one slice per idle callback of a Loop and
// requests a new callback while the work reports more to do.
type Idle struct {
	loop *Loop
	work func() bool
	done func()
	job  JobID
}

// NewIdle creates a scheduler on loop.
func NewIdle(loop *Loop) *Idle {
	return &Idle{loop: loop}
}

// Init implements Scheduler.
func (s *Idle) Init(work func() bool, done func()) {
	s.work = work
	s.done = done
}

// Schedule implements Scheduler.
func (s *Idle) Schedule() {
	if s.work == nil {
		panic("scheduler: Schedule before Init")
	}
	if s.job.IsZero() {
		s.job = s.loop.RequestIdle(s.run)
	}
}

// Cancel implements Scheduler.
func (s *Idle) Cancel() {
	if s.work == nil {
		panic("scheduler: Cancel before Init")
	}
	if !s.job.IsZero() {
		s.loop.CancelIdle(s.job)
		s.job = JobID{}
	}
}

// Scheduled reports whether a callback is pending.
func (s *Idle) Scheduled() bool {
	return !s.job.IsZero()
}

func (s *Idle) run() {
	s.job = JobID{}
	more := s.work()
	if s.done != nil {
		s.done()
	}
	if more {
		s.Schedule()
	}
}
