package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/common"
	"github.com/oqtopus-team/qec-bell/shor"
)

var globalSetting *Setting

// ScenarioSetting is one [[scenarios]] entry of the setting file.
type ScenarioSetting struct {
	Name   string           `toml:"name"`
	Errors []shor.ErrorSpec `toml:"errors"`
	Shots  int              `toml:"shots,omitempty"`
}

type Setting struct {
	Scenarios []ScenarioSetting `toml:"scenarios"`
	// decoded separately by NewRunContextWithSettingPath
	RunGroupSetting map[string]interface{} `toml:"run_group,omitempty"`
}

func ResetSetting() {
	globalSetting = newSetting()
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func newSetting() *Setting {
	return &Setting{
		Scenarios:       []ScenarioSetting{},
		RunGroupSetting: make(map[string]interface{}),
	}
}

func (s *Setting) parseSetting(tomlString string) error {
	_, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting has %d scenarios", len(s.Scenarios)))
	return nil
}
