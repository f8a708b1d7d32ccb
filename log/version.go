package log

import (
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/core"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Simulator version:" + core.Version)
}
