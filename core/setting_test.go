//go:build unit
// +build unit

package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oqtopus-team/qec-bell/shor"
)

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantError bool
		want      []ScenarioSetting
	}{
		{
			name: "empty",
			in:   "",
			want: []ScenarioSetting{},
		},
		{
			name: "scenarios",
			in: heredoc.Doc(`
				[[scenarios]]
				name = "x on block 0"
				errors = ["0:2:X"]

				[[scenarios]]
				name = "paired"
				errors = ["0:4:X", "1:4:x"]
				shots = 128

				[run_group.periodic_tasks.version_log]
				period = "1m"
			`),
			want: []ScenarioSetting{
				{Name: "x on block 0", Errors: []shor.ErrorSpec{{Logical: 0, Position: 2, Pauli: shor.X}}},
				{Name: "paired", Errors: []shor.ErrorSpec{{Logical: 0, Position: 4, Pauli: shor.X}, {Logical: 1, Position: 4, Pauli: shor.X}}, Shots: 128},
			},
		},
		{
			name: "out of range position",
			in: heredoc.Doc(`
				[[scenarios]]
				name = "bad"
				errors = ["0:9:X"]
			`),
			wantError: true,
		},
		{
			name: "unknown pauli",
			in: heredoc.Doc(`
				[[scenarios]]
				name = "bad"
				errors = ["0:1:H"]
			`),
			wantError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetSetting()
			err := GetGlobalSetting().parseSetting(tt.in)
			if tt.wantError {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.want, GetGlobalSetting().Scenarios)
		})
	}
}

func TestParseSettingFromPath(t *testing.T) {
	ResetSetting()
	path := filepath.Join(t.TempDir(), "setting.toml")
	require.Nil(t, os.WriteFile(path, []byte("[[scenarios]]\nname = \"none\"\nerrors = []\n"), 0644))
	assert.Nil(t, ParseSettingFromPath(path))
	assert.Equal(t, "none", GetGlobalSetting().Scenarios[0].Name)

	assert.NotNil(t, ParseSettingFromPath(filepath.Join(t.TempDir(), "missing.toml")))
}
