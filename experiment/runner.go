package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/core"
	"github.com/oqtopus-team/qec-bell/statevec"
)

var ErrNoScenario = errors.New("no scenario to run")

// Runner submits scenarios to the scheduler of the system components and
// collects their results from the result DB.
type Runner struct {
	conf *core.Conf
	sc   *core.SystemComponents
	jm   *core.JobManager
}

func NewRunner(conf *core.Conf, sc *core.SystemComponents) (*Runner, error) {
	jm, err := core.NewJobManager(&ScenarioJob{})
	if err != nil {
		return nil, err
	}
	return &Runner{conf: conf, sc: sc, jm: jm}, nil
}

// Run blocks until every scenario is terminal. It returns the error of the
// first fatal scenario, or the cause when ctx is cancelled, along with the
// report of what did run.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	if len(scenarios) == 0 {
		return nil, ErrNoScenario
	}
	jc, err := core.NewJobContext(ctx, r.conf)
	if err != nil {
		return nil, err
	}
	defer jc.Release()

	jobs := make([]core.Job, 0, len(scenarios))
	results := make([]*core.ScenarioResult, 0, len(scenarios))
	err = r.sc.Invoke(func(s core.Scheduler, d core.DBManager) error {
		for i, sc := range scenarios {
			res := core.NewScenarioResult(i, sc.Name, sc.Errors)
			res.Shots = sc.Shots
			if res.Shots == 0 {
				res.Shots = r.conf.Shots
			}
			if err := d.Insert(res); err != nil {
				return err
			}
			j, err := r.jm.NewJob(SCENARIO_JOB, res, jc)
			if err != nil {
				return err
			}
			jobs = append(jobs, j)
		}

		var wg sync.WaitGroup
		for _, j := range jobs {
			wg.Add(1)
			s.HandleJob(j, &wg)
		}
		wg.Wait()

		for _, j := range jobs {
			if err := d.Update(j.Result()); err != nil {
				return err
			}
			results = append(results, j.Result().Clone())
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to run scenarios")
	}

	report := NewReport(results)
	if cause := jc.Cause(); cause != nil && statevec.IsDimensionError(cause) {
		zap.L().Error(fmt.Sprintf("scenario batch aborted. Reason:%s", cause))
		return report, cause
	}
	if ctx.Err() != nil {
		return report, errors.Wrap(context.Cause(ctx), "scenario batch interrupted")
	}
	zap.L().Info(fmt.Sprintf("finished %d scenarios: %d succeeded, %d failed, %d cancelled",
		report.Summary.Scenarios, report.Summary.Succeeded, report.Summary.Failed, report.Summary.Cancelled))
	return report, nil
}
