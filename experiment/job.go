package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-openapi/strfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/bell"
	"github.com/oqtopus-team/qec-bell/circuit"
	"github.com/oqtopus-team/qec-bell/core"
	"github.com/oqtopus-team/qec-bell/sampling"
	"github.com/oqtopus-team/qec-bell/shor"
	"github.com/oqtopus-team/qec-bell/statevec"
)

const SCENARIO_JOB = "scenario"

const instrumentationName = "github.com/oqtopus-team/qec-bell/experiment"

var tracer = otel.Tracer(instrumentationName)

var (
	counterOnce sync.Once
	counter     metric.Int64Counter
)

func scenarioCounter() metric.Int64Counter {
	counterOnce.Do(func() {
		c, err := otel.Meter(instrumentationName).Int64Counter(
			"qec.scenarios.completed",
			metric.WithDescription("scenarios that reached a terminal status"),
			metric.WithUnit("{scenario}"))
		if err != nil {
			zap.L().Warn("failed to create the scenario counter", zap.Error(err))
			c = noop.Int64Counter{}
		}
		counter = c
	})
	return counter
}

// ScenarioJob simulates one scenario on its own engine and state.
// PreProcess builds the protocol circuit, Process runs it up to the
// syndrome measurements and applies the corrections, PostProcess recovers
// and scores the pair.
type ScenarioJob struct {
	result     *core.ScenarioResult
	jobContext *core.JobContext

	ctx           context.Context
	span          trace.Span
	started       time.Time
	circuit       *circuit.Circuit
	engine        *statevec.Engine
	state         *statevec.State
	source        *rand.Rand
	uncorrectable []error
	finished      bool
}

func (j *ScenarioJob) New(r *core.ScenarioResult, jc *core.JobContext) core.Job {
	return &ScenarioJob{
		result:     r,
		jobContext: jc,
	}
}

func (j *ScenarioJob) PreProcess() {
	if j.cancelled() {
		return
	}
	r := j.Result()
	j.ctx, j.span = tracer.Start(j.jobContext.Context(), "scenario",
		trace.WithAttributes(
			attribute.String("scenario.id", r.ID),
			attribute.String("scenario.name", r.Name),
			attribute.Int("scenario.index", r.Index),
			attribute.Int("scenario.errors", len(r.Errors)),
		))
	j.started = time.Now()

	c := shor.NewCircuit()
	if err := shor.AppendPreparation(c, r.Errors); err != nil {
		j.fail("failed to build the circuit", err)
		return
	}
	j.circuit = c
	r.Qubits = c.NumQubits()
}

func (j *ScenarioJob) Process() {
	if j.cancelled() {
		return
	}
	r := j.Result()
	conf := j.conf()
	policy, err := shor.ParsePolicy(conf.DecoderPolicy)
	if err != nil {
		j.fail("invalid decoder policy", err)
		return
	}

	opts := []statevec.Option{statevec.WithEpsilon(conf.Epsilon)}
	if r.Shots > 0 {
		j.source = rand.New(rand.NewSource(conf.Seed + int64(r.Index)))
		opts = append(opts, statevec.WithSource(j.source))
	}
	j.engine = statevec.NewEngine(opts...)
	j.state, err = statevec.NewState(j.circuit.NumQubits(), j.circuit.NumClbits())
	if err != nil {
		j.fail("failed to allocate the register", err)
		return
	}
	if err := j.engine.Run(j.state, j.circuit.Ops()); err != nil {
		j.fail("failed to run the encoded circuit", err)
		return
	}

	mark := j.circuit.Len()
	decoder := shor.NewDecoder(policy)
	r.Logical = make([]core.LogicalResult, shor.NumLogical)
	for l := 0; l < shor.NumLogical; l++ {
		syn, err := shor.SyndromeFromClbits(j.state.Clbits(), shor.ClbitOffset(l))
		if err != nil {
			j.fail("failed to read the syndrome", err)
			return
		}
		lr := core.LogicalResult{Syndrome: syn, Correction: shor.Identity()}
		corr, err := decoder.Decode(syn)
		switch {
		case err == nil:
			ops := corr.Operations(shor.Data(l))
			j.circuit.Append(ops...)
			r.CorrectionGates += len(ops)
			lr.Correction = corr
			lr.Corrected = true
		case shor.IsUncorrectable(err):
			zap.L().Info(fmt.Sprintf("scenario(%s) logical qubit %d left uncorrected. Reason:%s", r.ID, l, err))
			j.uncorrectable = append(j.uncorrectable, errors.Wrapf(err, "logical qubit %d", l))
		default:
			j.fail("failed to decode the syndrome", err)
			return
		}
		r.Logical[l] = lr
	}
	if err := j.engine.Run(j.state, j.circuit.Since(mark)); err != nil {
		j.fail("failed to apply the corrections", err)
		return
	}
}

func (j *ScenarioJob) PostProcess() {
	if j.finished {
		return
	}
	r := j.Result()
	mark := j.circuit.Len()
	shor.AppendRecovery(j.circuit)
	if err := j.engine.Run(j.state, j.circuit.Since(mark)); err != nil {
		j.fail("failed to decode the logical qubits", err)
		return
	}

	fid, err := bell.StateFidelity(j.state, shor.OutputQubits()...)
	if err != nil {
		j.fail("failed to score the recovered pair", err)
		return
	}
	r.Fidelity = fid
	r.QBER = bell.QBER(fid)
	r.KeyRate = bell.KeyRate(r.QBER)
	r.Scored = true

	if r.Shots > 0 {
		counts, err := sampling.NewSampler(j.source).Sample(j.state, r.Shots, shor.OutputQubits()...)
		if err != nil {
			j.fail("failed to sample the recovered pair", err)
			return
		}
		r.Counts = counts
		r.ClassicalFidelity = bell.ClassicalFidelity(counts)
		r.Correlation = sampling.Correlation(counts)
		if r.Marginals, err = sampling.Divide(counts, 1, 1); err != nil {
			j.fail("failed to divide the sampled counts", err)
			return
		}
	}

	r.Depth = j.circuit.Depth()
	r.Gates = j.circuit.GateCount()
	r.SetDuration(time.Since(j.started))
	if len(j.uncorrectable) == 0 {
		r.Status = core.SUCCEEDED
		r.Ended = strfmt.DateTime(time.Now())
	}
	for _, err := range j.uncorrectable {
		core.SetFailureWithError(j, err)
	}
	j.finish()
}

func (j *ScenarioJob) IsFinished() bool {
	return j.finished
}

func (j *ScenarioJob) Result() *core.ScenarioResult {
	return j.result
}

func (j *ScenarioJob) JobType() string {
	return SCENARIO_JOB
}

func (j *ScenarioJob) JobContext() *core.JobContext {
	return j.jobContext
}

// Clone copies the result only. The copy is a snapshot and cannot be run.
func (j *ScenarioJob) Clone() core.Job {
	return &ScenarioJob{
		result:     j.result.Clone(),
		jobContext: j.jobContext,
		finished:   j.finished,
	}
}

// Circuit is the circuit built so far, nil before PreProcess.
func (j *ScenarioJob) Circuit() *circuit.Circuit {
	return j.circuit
}

func (j *ScenarioJob) conf() *core.Conf {
	if j.jobContext == nil || j.jobContext.Conf == nil {
		return &core.Conf{}
	}
	return j.jobContext.Conf
}

func (j *ScenarioJob) cancelled() bool {
	if j.finished {
		return true
	}
	ctx := j.jobContext.Context()
	if ctx.Err() == nil {
		return false
	}
	r := j.Result()
	r.Status = core.CANCELLED
	r.Message = fmt.Sprintf("cancelled: %s", context.Cause(ctx))
	r.Ended = strfmt.DateTime(time.Now())
	zap.L().Debug(fmt.Sprintf("scenario(%s) is cancelled", r.ID))
	j.finish()
	return true
}

// fail marks the scenario FAILED. A DimensionError means the protocol
// itself is broken, so it aborts the whole batch.
func (j *ScenarioJob) fail(what string, err error) {
	err = errors.Wrap(err, what)
	zap.L().Error(fmt.Sprintf("scenario(%s) failed. Reason:%s", j.Result().ID, err))
	core.SetFailureWithError(j, err)
	if statevec.IsDimensionError(err) {
		j.jobContext.Abort(err)
	}
	j.finish()
}

func (j *ScenarioJob) finish() {
	j.finished = true
	r := j.Result()
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	scenarioCounter().Add(ctx, 1, metric.WithAttributes(attribute.String("status", r.Status.String())))
	if j.span == nil {
		return
	}
	j.span.SetAttributes(
		attribute.String("scenario.status", r.Status.String()),
		attribute.Float64("scenario.fidelity", r.Fidelity),
		attribute.Float64("scenario.qber", r.QBER),
		attribute.Int("scenario.depth", r.Depth),
	)
	if r.Status != core.SUCCEEDED {
		j.span.SetStatus(codes.Error, r.Message)
	}
	j.span.End()
}
