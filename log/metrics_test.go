//go:build unit
// +build unit

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oqtopus-team/qec-bell/core"
)

func TestMetricsLogTask(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	require.Nil(t, s.Invoke(func(d core.DBManager) error {
		r := core.NewScenarioResult(0, "done", nil)
		r.Status = core.SUCCEEDED
		return d.Insert(r)
	}))

	dir := t.TempDir()
	m := &MetricsLogTaskImpl{}
	require.Nil(t, m.SetParams(map[string]interface{}{"file_dir": dir}))
	assert.Equal(t, dir, m.FileDir)
	require.Nil(t, m.Setup())
	m.Task()
	m.Cleanup()

	name := fmt.Sprintf("metrics-%s.log", time.Now().Format("2006-01-02"))
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.Nil(t, err)
	assert.Contains(t, string(b), `"msg":"Metrics"`)
	assert.Contains(t, string(b), `"queue_length":0`)
	assert.Contains(t, string(b), `"results":{"ready":0,"running":0,"succeeded":1,"failed":0,"cancelled":0}`)
}

func TestMetricsLogTaskParams(t *testing.T) {
	m := &MetricsLogTaskImpl{FileDir: "keep"}
	assert.Nil(t, m.SetParams(nil))
	assert.Equal(t, "keep", m.FileDir)
	assert.EqualError(t, m.SetParams("dir"), "failed to set params for metrics log task/params: dir")
}

func TestMetricsLogTaskUnwritableDir(t *testing.T) {
	m := &MetricsLogTaskImpl{FileDir: filepath.Join(t.TempDir(), "missing")}
	assert.NotNil(t, m.Setup())
}
