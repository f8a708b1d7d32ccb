package experiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oqtopus-team/qec-bell/bell"
	"github.com/oqtopus-team/qec-bell/core"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type Summary struct {
	Scenarios    int     `json:"scenarios"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	Cancelled    int     `json:"cancelled"`
	Scored       int     `json:"scored"`
	MeanFidelity float64 `json:"mean_fidelity"`
	StdFidelity  float64 `json:"std_fidelity"`
	MinFidelity  float64 `json:"min_fidelity"`
	MeanQBER     float64 `json:"mean_qber"`
}

// Report holds copies of the results of one batch, in scenario order.
type Report struct {
	Info    *core.Info             `json:"info,omitempty"`
	Summary Summary                `json:"summary"`
	Results []*core.ScenarioResult `json:"results"`

	failures error
}

func NewReport(results []*core.ScenarioResult) *Report {
	r := &Report{
		Info:    core.CurrentInfo,
		Results: make([]*core.ScenarioResult, 0, len(results)),
	}
	var fids, qbers []float64
	for _, res := range results {
		r.Results = append(r.Results, res.Clone())
		switch res.Status {
		case core.SUCCEEDED:
			r.Summary.Succeeded++
		case core.FAILED:
			r.Summary.Failed++
			r.failures = multierr.Append(r.failures, fmt.Errorf("%s: %s", res.Name, res.Message))
		case core.CANCELLED:
			r.Summary.Cancelled++
		}
		if res.Scored {
			fids = append(fids, res.Fidelity)
			qbers = append(qbers, res.QBER)
		}
	}
	r.Summary.Scenarios = len(results)
	r.Summary.Scored = len(fids)
	if len(fids) > 0 {
		r.Summary.MeanFidelity, r.Summary.StdFidelity = stat.MeanStdDev(fids, nil)
		if len(fids) < 2 {
			r.Summary.StdFidelity = 0
		}
		r.Summary.MinFidelity = floats.Min(fids)
		r.Summary.MeanQBER = stat.Mean(qbers, nil)
	}
	return r
}

// Failures combines the messages of every FAILED scenario.
func (r *Report) Failures() error {
	return r.failures
}

func (r *Report) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal experiment.Report", zap.Error(err))
		return ""
	}
	return string(pretty.Pretty(st))
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Table renders one row per scenario followed by the summary line.
func (r *Report) Table() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "NAME", "ERRORS", "STATUS", "FIDELITY", "QBER", "SYNDROMES", "CORRECTIONS", "DEPTH", "GATES", "DURATION(ms)").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, res := range r.Results {
		t.Row(
			strconv.Itoa(res.Index),
			res.Name,
			errorsColumn(res),
			res.Status.String(),
			scoreColumn(res, bell.FormatFidelity(res.Fidelity)),
			scoreColumn(res, bell.FormatQBER(res.QBER)),
			logicalColumn(res, func(l core.LogicalResult) string { return l.Syndrome.String() }),
			logicalColumn(res, func(l core.LogicalResult) string { return l.Correction.String() }),
			strconv.Itoa(res.Depth),
			strconv.Itoa(res.Gates),
			fmt.Sprintf("%.3f", res.DurationMs),
		)
	}
	s := r.Summary
	return fmt.Sprintf("%s\n%d scenarios: %d succeeded, %d failed, %d cancelled. fidelity mean %s std %s min %s, mean QBER %s\n",
		t.String(), s.Scenarios, s.Succeeded, s.Failed, s.Cancelled,
		bell.FormatFidelity(s.MeanFidelity), bell.FormatFidelity(s.StdFidelity),
		bell.FormatFidelity(s.MinFidelity), bell.FormatQBER(s.MeanQBER))
}

func errorsColumn(res *core.ScenarioResult) string {
	if len(res.Errors) == 0 {
		return "-"
	}
	ss := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		ss = append(ss, e.String())
	}
	return strings.Join(ss, " ")
}

func scoreColumn(res *core.ScenarioResult, v string) string {
	if !res.Scored {
		return "-"
	}
	return v
}

func logicalColumn(res *core.ScenarioResult, f func(core.LogicalResult) string) string {
	if len(res.Logical) == 0 {
		return "-"
	}
	ss := make([]string, 0, len(res.Logical))
	for _, l := range res.Logical {
		ss = append(ss, f(l))
	}
	return strings.Join(ss, " | ")
}
