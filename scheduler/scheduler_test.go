//go:build unit
// +build unit

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oqtopus-team/qec-bell/core"
)

var jm *core.JobManager

const FAILED_IN_PRE_PROCESS_JOB = "FAILED_in_pre_process_job"
const FAILED_IN_PROCESS_JOB = "FAILED_in_process_job"
const FAILED_IN_POST_PROCESS_JOB = "FAILED_in_post_process_job"
const SUCCESS_IN_PROCESS_JOB = "success_in_process_job"
const SUCCESS_IN_POST_PROCESS_JOB = "success_in_post_process_job"
const PANIC_IN_PROCESS_JOB = "panic_in_process_job"

func TestMain(m *testing.M) {
	jm, _ = core.NewJobManager(
		&core.UnimplementedJob{},
		&FAILEDInPreProcessJob{},
		&FAILEDInProcessJob{},
		&FAILEDInPostProcessJob{},
		&successInProcessJob{},
		&successInPostProcessJob{},
		&panicInProcessJob{},
	)
	m.Run()
}

func TestHandleJob(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	err := s.StartContainer()
	require.Nil(t, err)

	tests := []struct {
		name            string
		job             core.Job
		wantStatusSlice []core.Status
		wantMessage     string
	}{
		{
			name: "job that never finishes is failed after post-processing",
			job:  testJob(t, core.UNIMPLEMENTED_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
			wantMessage: "is not finished after post-processing",
		},
		{
			name: "handle job in FAILED",
			job:  testJob(t, core.UNIMPLEMENTED_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED in pre-processing job in ready state",
			job:  testJob(t, FAILED_IN_PRE_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.FAILED,
			},
		},
		{
			name: "handle FAILED in pre-processing job in FAILED state",
			job:  testJob(t, FAILED_IN_PRE_PROCESS_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED process job with pre-processing",
			job:  testJob(t, FAILED_IN_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name: "handle FAILED post-process job with FAILED",
			job:  testJob(t, FAILED_IN_POST_PROCESS_JOB, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name: "handle FAILED post-process job with pre-processing",
			job:  testJob(t, FAILED_IN_POST_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name: "job finished in process skips post-processing",
			job:  testJob(t, SUCCESS_IN_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
		{
			name: "handle success post-process job with pre-processing",
			job:  testJob(t, SUCCESS_IN_POST_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
		{
			name: "recover from panic in process",
			job:  testJob(t, PANIC_IN_PROCESS_JOB, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED, // The job panics, so it should end in FAILED
			},
			wantMessage: "panic in process",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobID := tt.job.Result().ID
			var wg sync.WaitGroup
			wg.Add(1)
			nsc.HandleJob(tt.job, &wg)
			wg.Wait()
			assert.Equal(
				t,
				tt.wantStatusSlice,
				nsc.StatusHistory(jobID),
				fmt.Sprintf(
					"expected status slice:%s\n actual status slice:%s\n",
					printStatusSlice(tt.wantStatusSlice),
					printStatusSlice(nsc.StatusHistory(jobID))))
			assert.Contains(t, tt.job.Result().Message, tt.wantMessage)
		})
	}
}

func TestHandleManyJobs(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	require.Nil(t, s.StartContainer())

	var wg sync.WaitGroup
	jobs := make([]core.Job, 50)
	for i := range jobs {
		jobs[i] = testJob(t, SUCCESS_IN_POST_PROCESS_JOB, core.READY)
		wg.Add(1)
		nsc.HandleJob(jobs[i], &wg)
	}
	wg.Wait()
	for _, j := range jobs {
		assert.Equal(t, core.SUCCEEDED, j.Result().Status)
	}
	assert.Equal(t, 0, nsc.GetCurrentQueueSize())
}

func TestStartTwice(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	require.Nil(t, s.StartContainer())
	assert.EqualError(t, nsc.Start(), "scheduler is already started")
}

func TestStopWithoutStart(t *testing.T) {
	nsc := &NormalScheduler{}
	assert.Nil(t, nsc.Setup(&core.Conf{Workers: 0}))
	assert.Equal(t, 1, nsc.workers)
	nsc.Stop()
	nsc.Stop()
}

func testJob(t *testing.T, jobType string, firstStatus core.Status) core.Job {
	r := core.NewScenarioResult(0, jobType, nil)
	r.Status = firstStatus
	jc, err := core.NewJobContext(context.Background(), &core.Conf{})
	require.Nil(t, err)
	j, err := jm.NewJob(jobType, r, jc)
	require.Nil(t, err)
	return j
}

type FAILEDInPreProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInPreProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInPreProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInPreProcessJob) PreProcess() {
	j.Result().Status = core.FAILED
}

func (j *FAILEDInPreProcessJob) JobType() string {
	return FAILED_IN_PRE_PROCESS_JOB
}

type FAILEDInProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInProcessJob) Process() {
	j.Result().Status = core.FAILED
}

func (j *FAILEDInProcessJob) JobType() string {
	return FAILED_IN_PROCESS_JOB
}

type FAILEDInPostProcessJob struct {
	*core.UnimplementedJob
}

func (j *FAILEDInPostProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &FAILEDInPostProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *FAILEDInPostProcessJob) PostProcess() {
	j.Result().Status = core.FAILED
}

func (j *FAILEDInPostProcessJob) JobType() string {
	return FAILED_IN_POST_PROCESS_JOB
}

type successInProcessJob struct {
	*core.UnimplementedJob
}

func (j *successInProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &successInProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *successInProcessJob) Process() {
	j.Result().Status = core.SUCCEEDED
}

func (j *successInProcessJob) PostProcess() {
	j.Result().Status = core.FAILED
}

func (j *successInProcessJob) JobType() string {
	return SUCCESS_IN_PROCESS_JOB
}

type successInPostProcessJob struct {
	*core.UnimplementedJob
}

func (j *successInPostProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &successInPostProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *successInPostProcessJob) PostProcess() {
	j.Result().Status = core.SUCCEEDED
}

func (j *successInPostProcessJob) JobType() string {
	return SUCCESS_IN_POST_PROCESS_JOB
}

type panicInProcessJob struct {
	*core.UnimplementedJob
}

func (j *panicInProcessJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	u := &core.UnimplementedJob{}
	return &panicInProcessJob{
		UnimplementedJob: u.New(r, jc).(*core.UnimplementedJob),
	}
}

func (j *panicInProcessJob) Process() {
	panic("panic in process")
}

func (j *panicInProcessJob) JobType() string {
	return PANIC_IN_PROCESS_JOB
}

func printStatusSlice(ss []core.Status) string {
	s := "[\n"
	for _, status := range ss {
		s += fmt.Sprintf("  %v,\n", status)
	}
	return s + "]"
}
