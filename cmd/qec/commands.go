package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/common"
	"github.com/oqtopus-team/qec-bell/core"
	"github.com/oqtopus-team/qec-bell/experiment"
	"github.com/oqtopus-team/qec-bell/log"
	"github.com/oqtopus-team/qec-bell/shor"
)

type runCmd struct {
	Errors []string `long:"error" short:"e" description:"injected error as logical:position:pauli, e.g. 0:4:X (repeatable)"`
	Name   string   `long:"name" description:"name of the scenario built from --error" default:"custom"`
}

func newRunCmd() *runCmd {
	return &runCmd{}
}

func (c *runCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	scenarios, err := c.scenarios(app.Conf)
	if err != nil {
		return err
	}
	return runScenarios(app.Conf, scenarios)
}

func (c *runCmd) scenarios(conf *core.Conf) ([]experiment.Scenario, error) {
	if len(c.Errors) > 0 {
		errs, err := shor.ParseErrorSpecs(c.Errors)
		if err != nil {
			return nil, err
		}
		return []experiment.Scenario{{Name: c.Name, Errors: errs}}, nil
	}
	if common.FileExists(conf.SettingPath) {
		core.ResetSetting()
		if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
			return nil, err
		}
		scenarios, err := experiment.FromSetting(core.GetGlobalSetting())
		if err != nil {
			return nil, err
		}
		if len(scenarios) > 0 {
			return scenarios, nil
		}
	}
	zap.L().Info("no scenario is given, running the no-error baseline")
	return []experiment.Scenario{experiment.NoErrorScenario()}, nil
}

type sweepCmd struct {
	Paired bool `long:"paired" description:"also flip the same position of both halves of the pair"`
}

func newSweepCmd() *sweepCmd {
	return &sweepCmd{}
}

func (c *sweepCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	scenarios := experiment.SweepScenarios()
	if c.Paired {
		scenarios = append(scenarios, experiment.PairedBitFlipScenarios()...)
	}
	return runScenarios(app.Conf, scenarios)
}

type qasmCmd struct {
	Errors []string `long:"error" short:"e" description:"injected error as logical:position:pauli (repeatable)"`
}

func newQASMCmd() *qasmCmd {
	return &qasmCmd{}
}

func (c *qasmCmd) Execute(args []string) error {
	errs, err := shor.ParseErrorSpecs(c.Errors)
	if err != nil {
		return err
	}
	circ := shor.NewCircuit()
	if err := shor.AppendPreparation(circ, errs); err != nil {
		return err
	}
	shor.AppendRecovery(circ)
	fmt.Fprint(os.Stdout, circ.QASM())
	return nil
}

func runScenarios(conf *core.Conf, scenarios []experiment.Scenario) error {
	s, err := setupSystemComponents(conf)
	if err != nil {
		return err
	}
	defer s.TearDown()
	if err := s.StartContainer(); err != nil {
		return err
	}
	core.SetInfo(conf)

	runner, err := experiment.NewRunner(conf, s)
	if err != nil {
		return err
	}
	rc, err := newRunContext(conf)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	var report *experiment.Report
	rc.AddBatch("scenarios", func(ctx context.Context) error {
		var err error
		report, err = runner.Run(ctx, scenarios)
		return err
	})
	rc.AddSignalHandler()
	core.SetRunContext(rc)

	runErr := rc.Run()
	if report != nil {
		printReport(conf, report)
	}
	if runErr != nil {
		return errors.Wrap(runErr, "execution error")
	}
	return nil
}

// newRunContext adds the periodic tasks of the setting file, if there is one.
func newRunContext(conf *core.Conf) (*core.RunContext, error) {
	if !common.FileExists(conf.SettingPath) {
		return core.NewRunContext(), nil
	}
	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
	}
	return core.NewRunContextWithSettingPath(conf.SettingPath, im)
}

func printReport(conf *core.Conf, report *experiment.Report) {
	switch conf.Output {
	case "json":
		fmt.Fprintln(os.Stdout, report.ToString())
	default:
		fmt.Fprint(os.Stdout, report.Table())
		if err := report.Failures(); err != nil {
			fmt.Fprintf(os.Stdout, "failures: %s\n", err)
		}
	}
}
