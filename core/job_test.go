//go:build unit
// +build unit

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobManager(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := NewJobManager(&UnimplementedJob{})
	assert.Nil(t, err)
	assert.Equal(t, jm, GetJobManager())
	assert.Equal(t, []string{UNIMPLEMENTED_JOB}, jm.AcceptableJobTypes())

	err = jm.RegisterJob(&UnimplementedJob{})
	assert.EqualError(t, err, "job:unimplemented is already registered")

	jc, err := NewJobContext(context.Background(), &Conf{})
	assert.Nil(t, err)
	defer jc.Release()

	r := NewScenarioResult(0, "test", nil)
	job, err := jm.NewJob(UNIMPLEMENTED_JOB, r, jc)
	assert.Nil(t, err)
	assert.Equal(t, r, job.Result())
	assert.Equal(t, jc, job.JobContext())

	_, err = jm.NewJob("sampling", r, jc)
	assert.EqualError(t, err, "job type sampling is not registered")
}

func TestJobContextAbort(t *testing.T) {
	jc := NewJobContextForTest(&Conf{})
	assert.Nil(t, jc.Cause())
	assert.Nil(t, jc.Context().Err())

	jc.Abort(assert.AnError)
	<-jc.Context().Done()
	assert.Equal(t, assert.AnError, jc.Cause())

	jc.Release()
	assert.Equal(t, assert.AnError, jc.Cause())
}

func TestUnimplementedJobClone(t *testing.T) {
	j := (&UnimplementedJob{}).New(NewScenarioResult(0, "a", nil), nil)
	c := j.Clone()
	j.PreProcess()
	assert.False(t, j.IsFinished())
	j.Result().Status = CANCELLED
	assert.True(t, j.IsFinished())
	assert.False(t, c.IsFinished())
}
