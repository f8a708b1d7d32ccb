package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/shor"
)

type Status int
type Counts map[string]uint32

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

// Keys returns the sampled bit strings in lexical order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

const (
	READY     Status = iota // Created and not picked up by the scheduler.
	RUNNING                 // Being simulated.
	SUCCEEDED               // Every logical qubit was decoded and the pair was scored.
	FAILED                  // A syndrome was uncorrectable or the run aborted.
	CANCELLED               // Never run because the batch was cancelled.
)

func (s Status) String() string {
	switch s {
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ToStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// LogicalResult is the syndrome and correction of one logical qubit.
type LogicalResult struct {
	Syndrome   shor.Syndrome   `json:"syndrome"`
	Correction shor.Correction `json:"correction"`
	Corrected  bool            `json:"corrected"`
}

// ScenarioResult is the record of one scenario run. The copy handed out by
// the result DB and the report is never mutated.
type ScenarioResult struct {
	ID                string           `json:"id"`
	Index             int              `json:"index"`
	Name              string           `json:"name"`
	Errors            []shor.ErrorSpec `json:"errors"`
	Status            Status           `json:"status"`
	Fidelity          float64          `json:"fidelity"`
	QBER              float64          `json:"qber"`
	KeyRate           float64          `json:"key_rate"`
	ClassicalFidelity float64          `json:"classical_fidelity"`
	Duration          time.Duration    `json:"-"`
	DurationMs        float64          `json:"duration_ms"`
	Depth             int              `json:"depth"`
	Qubits            int              `json:"qubits"`
	Gates             int              `json:"gates"`
	CorrectionGates   int              `json:"correction_gates"`
	Logical           []LogicalResult  `json:"logical"`
	Message           string           `json:"message,omitempty"`
	Scored            bool             `json:"scored"`
	Shots             int              `json:"shots"`
	Counts            Counts           `json:"counts,omitempty"`
	Marginals         []Counts         `json:"marginals,omitempty"`
	Correlation       float64          `json:"zz_correlation"`
	Created           strfmt.DateTime  `json:"created"`
	Ended             strfmt.DateTime  `json:"ended"`
}

func NewScenarioResult(index int, name string, errs []shor.ErrorSpec) *ScenarioResult {
	return &ScenarioResult{
		ID:      uuid.NewString(),
		Index:   index,
		Name:    name,
		Errors:  append([]shor.ErrorSpec{}, errs...),
		Status:  READY,
		Counts:  make(Counts),
		Created: strfmt.DateTime(time.Now()),
	}
}

func (r *ScenarioResult) Clone() *ScenarioResult {
	c := deepcopy.Copy(r).(*ScenarioResult)
	c.Created = *r.Created.DeepCopy()
	c.Ended = *r.Ended.DeepCopy()
	return c
}

// SetDuration records the run time, in milliseconds for the JSON form.
func (r *ScenarioResult) SetDuration(d time.Duration) {
	r.Duration = d
	r.DurationMs = float64(d.Microseconds()) / 1000
}

func (r *ScenarioResult) IsTerminal() bool {
	return r.Status == SUCCEEDED || r.Status == FAILED || r.Status == CANCELLED
}

func (r *ScenarioResult) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.ScenarioResult")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

func SetFailureWithError(j Job, err error) (msg string) {
	return SetFailureWithErrorToResult(j.Result(), err)
}

func SetFailureWithErrorToResult(r *ScenarioResult, err error) (msg string) {
	msg = err.Error()
	if r.Message != "" {
		r.Message += "; " + msg
	} else {
		r.Message = msg
	}
	r.Status = FAILED
	r.Ended = strfmt.DateTime(time.Now())
	return r.Message
}
