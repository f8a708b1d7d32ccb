package core

import (
	"context"
	"sync"

	"go.uber.org/dig"
)

const UNIMPLEMENTED_JOB = "unimplemented"

// UnimplementedJob does nothing in any phase. Embed it in test jobs.
type UnimplementedJob struct {
	result     *ScenarioResult
	jobContext *JobContext
}

func (j *UnimplementedJob) New(r *ScenarioResult, jc *JobContext) Job {
	return &UnimplementedJob{
		result:     r,
		jobContext: jc,
	}
}

func (j *UnimplementedJob) PreProcess() {}

func (j *UnimplementedJob) Process() {}

func (j *UnimplementedJob) PostProcess() {}

func (j *UnimplementedJob) IsFinished() bool {
	return j.result.IsTerminal()
}

func (j *UnimplementedJob) Result() *ScenarioResult {
	return j.result
}

func (j *UnimplementedJob) JobType() string {
	return UNIMPLEMENTED_JOB
}

func (j *UnimplementedJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *UnimplementedJob) Clone() Job {
	return &UnimplementedJob{
		result:     j.result.Clone(),
		jobContext: j.jobContext,
	}
}

type unimplementedScheduler struct{}

func (u *unimplementedScheduler) Setup(*Conf) error { return nil }
func (u *unimplementedScheduler) Start() error      { return nil }
func (u *unimplementedScheduler) HandleJob(_ Job, wg *sync.WaitGroup) {
	if wg != nil {
		wg.Done()
	}
}
func (u *unimplementedScheduler) Stop()                    {}
func (u *unimplementedScheduler) GetCurrentQueueSize() int { return 0 }

func SCWithUnimplementedContainer() *SystemComponents {
	return SCWithScheduler(&unimplementedScheduler{})
}

func SCWithScheduler(sc Scheduler) *SystemComponents {
	c := dig.New()
	_ = c.Provide(func() DBManager { return &MemoryDB{} })
	_ = c.Provide(func() Scheduler { return sc })
	s := NewSystemComponents(c)
	_ = s.Setup(&Conf{QueueMaxSize: 1000, Workers: 2})
	return s
}

// NewJobContextForTest builds a context that is not tied to the global
// system components.
func NewJobContextForTest(conf *Conf) *JobContext {
	return newJobContext(context.Background(), NewChannels(), conf)
}
