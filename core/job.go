package core

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

var jobManager *JobManager

type Job interface {
	// Job Control
	New(*ScenarioResult, *JobContext) Job
	PreProcess()
	Process()
	PostProcess()
	IsFinished() bool

	// Data Access
	Result() *ScenarioResult // Get mutable ScenarioResult
	JobType() string
	JobContext() *JobContext
	Clone() Job
}

// JobContext is shared by every job of one batch.
type JobContext struct {
	*Channels
	Conf *Conf

	ctx   context.Context
	abort context.CancelCauseFunc
}

func NewJobContext(ctx context.Context, conf *Conf) (*JobContext, error) {
	s := GetSystemComponents()
	if s == nil {
		return nil, fmt.Errorf("system components is not initialized")
	}
	if s.Channels == nil {
		return nil, fmt.Errorf("channels is not initialized")
	}
	return newJobContext(ctx, s.Channels, conf), nil
}

func newJobContext(ctx context.Context, c *Channels, conf *Conf) *JobContext {
	cctx, cancel := context.WithCancelCause(ctx)
	return &JobContext{
		Channels: c,
		Conf:     conf,
		ctx:      cctx,
		abort:    cancel,
	}
}

func (c *JobContext) Context() context.Context {
	return c.ctx
}

// Abort cancels every job of the batch that has not started yet.
func (c *JobContext) Abort(err error) {
	c.abort(err)
}

// Cause returns the error passed to Abort, or nil.
func (c *JobContext) Cause() error {
	if c.ctx.Err() == nil {
		return nil
	}
	return context.Cause(c.ctx)
}

// Release frees the context once the batch is over.
func (c *JobContext) Release() {
	c.abort(context.Canceled)
}

// factory pattern
type JobManager struct {
	acceptableJobs []Job //empty jobs
}

func (j *JobManager) RegisterJob(jobs ...Job) error {
	for _, job := range jobs {
		for _, t := range j.acceptableJobs {
			if reflect.TypeOf(t) == reflect.TypeOf(job) {
				return fmt.Errorf("job:%s is already registered", job.JobType())
			}
		}
		zap.L().Debug(fmt.Sprintf("registering job type %s", job.JobType()))
		j.acceptableJobs = append(j.acceptableJobs, job)
	}
	return nil
}

func (j *JobManager) AcceptableJobTypes() []string {
	types := []string{}
	for _, job := range j.acceptableJobs {
		types = append(types, job.JobType())
	}
	return types
}

func (j *JobManager) NewJob(jobType string, r *ScenarioResult, jc *JobContext) (Job, error) {
	zap.L().Debug(fmt.Sprintf("creating a job. Scenario ID:%s, Job Type:%s", r.ID, jobType))
	for _, j := range j.acceptableJobs {
		if j.JobType() == jobType {
			t := reflect.TypeOf(j)
			newInstance := reflect.New(t).Elem().Interface()
			job := newInstance.(Job).New(r, jc)
			return job, nil
		}
	}
	return nil, fmt.Errorf("job type %s is not registered", jobType)
}

func NewJobManager(jobs ...Job) (*JobManager, error) {
	jm := &JobManager{}
	if err := jm.RegisterJob(jobs...); err != nil {
		return nil, err
	}
	jobManager = jm
	return jm, nil
}

func GetJobManager() *JobManager {
	return jobManager
}
