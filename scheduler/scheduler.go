package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/core"
)

type statusHistory map[string][]core.Status

type statusManager interface {
	Update(job core.Job, status core.Status)
	Get(id string) []core.Status
}

type defaultStatusManager struct {
	statusHistory statusHistory
	mu            sync.RWMutex
}

func newDefaultStatusManager() *defaultStatusManager {
	return &defaultStatusManager{statusHistory: make(statusHistory)}
}

func (d *defaultStatusManager) Update(job core.Job, status core.Status) {
	id := job.Result().ID
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusHistory[id] = append(d.statusHistory[id], status)
}

func (d *defaultStatusManager) Get(id string) []core.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]core.Status{}, d.statusHistory[id]...)
}

// NormalScheduler runs PreProcess and PostProcess on the caller's goroutine
// and Process on a fixed pool of workers fed by the normal queue.
type NormalScheduler struct {
	queue         *NormalQueue
	workers       int
	statusManager statusManager

	running  sync.WaitGroup
	stopOnce sync.Once
	started  bool
}

type jobInScheduler struct {
	job      core.Job
	finished *sync.WaitGroup
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	n.queue = &NormalQueue{}
	if err := n.queue.Setup(conf); err != nil {
		return err
	}
	n.workers = conf.Workers
	if n.workers <= 0 {
		n.workers = 1
	}
	n.statusManager = newDefaultStatusManager()
	return nil
}

func (n *NormalScheduler) Start() error {
	if n.started {
		return fmt.Errorf("scheduler is already started")
	}
	n.started = true
	for i := 0; i < n.workers; i++ {
		n.running.Add(1)
		go n.work(i)
	}
	zap.L().Info(fmt.Sprintf("started %d workers", n.workers))
	return nil
}

func (n *NormalScheduler) work(worker int) {
	defer n.running.Done()
	for {
		jis, err := n.queue.Dequeue(true)
		if err != nil {
			zap.L().Error(fmt.Sprintf("worker %d failed to get a job from queue. Reason:%s", worker, err))
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if jis.job == nil {
			zap.L().Debug(fmt.Sprintf("worker %d stopped", worker))
			return
		}
		n.process(worker, jis)
	}
}

func (n *NormalScheduler) process(worker int, jis *jobInScheduler) {
	j := jis.job
	id := j.Result().ID
	defer jis.finished.Done()
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("recovered from panic in job(%s). Reason:%v", id, r))
			core.SetFailureWithError(j, errors.Errorf("panic in process: %v", r))
		}
	}()
	zap.L().Debug(fmt.Sprintf("worker %d processing job:%s", worker, id))
	j.Result().Status = core.RUNNING
	n.statusManager.Update(j, core.RUNNING)
	publish(j)
	j.Process()
	zap.L().Debug(fmt.Sprintf("finished to process job(%s), status:%s", id, j.Result().Status))
}

// Stop makes every worker return after the jobs already queued.
func (n *NormalScheduler) Stop() {
	n.stopOnce.Do(func() {
		if !n.started {
			return
		}
		for i := 0; i < n.workers; i++ {
			if err := n.queue.enqueueStop(); err != nil {
				zap.L().Error(fmt.Sprintf("failed to stop a worker. Reason:%s", err))
			}
		}
		n.running.Wait()
	})
}

func (n *NormalScheduler) HandleJob(j core.Job, wg *sync.WaitGroup) {
	zap.L().Debug(fmt.Sprintf("starting to handle job(%s) in %s", j.Result().ID, j.Result().Status))
	go func() {
		defer func() {
			zap.L().Debug(fmt.Sprintf("status history job(%s): %v", j.Result().ID, n.statusManager.Get(j.Result().ID)))
			if wg != nil {
				wg.Done()
			}
		}()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) handleImpl(j core.Job) {
	id := j.Result().ID
	st := j.Result().Status // must be ready
	n.statusManager.Update(j, st)
	if st != core.READY {
		zap.L().Error(fmt.Sprintf("finished to handle job(%s) with unexpected status:%s", id, st))
		return
	}
	zap.L().Debug(fmt.Sprintf("handling job(%s). start pre-processing", id))
	j.PreProcess()
	if j.IsFinished() {
		zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after pre-processing", id))
		n.finish(j)
		return
	}
	publish(j)

	var wg sync.WaitGroup
	wg.Add(1)
	if err := n.queue.Enqueue(&jobInScheduler{job: j, finished: &wg}); err != nil {
		core.SetFailureWithError(j, err)
		n.finish(j)
		return
	}
	wg.Wait() // wait for processing
	if j.IsFinished() {
		zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after processing with status:%s", id, j.Result().Status))
		n.finish(j)
		return
	}
	zap.L().Debug(fmt.Sprintf("handling job(%s). start post-processing", id))
	j.PostProcess()
	if !j.IsFinished() {
		core.SetFailureWithError(j, errors.Errorf("job(%s) is not finished after post-processing", id))
	}
	zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after post-processing with status:%s", id, j.Result().Status))
	n.finish(j)
}

func (n *NormalScheduler) finish(j core.Job) {
	if time.Time(j.Result().Ended).IsZero() {
		j.Result().Ended = strfmt.DateTime(time.Now())
	}
	n.statusManager.Update(j, j.Result().Status)
	publish(j)
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.GetCurrentSize()
}

// StatusHistory returns every status the job went through.
func (n *NormalScheduler) StatusHistory(id string) []core.Status {
	return n.statusManager.Get(id)
}

func publish(j core.Job) {
	jc := j.JobContext()
	if jc == nil || jc.Channels == nil || jc.DBChan == nil {
		return
	}
	jc.DBChan <- j.Clone()
}
