package core

import (
	"go.uber.org/zap"
)

// Version of the simulator, resolved by SetVersion.
var Version string

const NoVersion = "no_version_info"

// resolveVersion prefers the linker flag over the configuration.
func resolveVersion(c *Conf, versionByBuildFlag string) (version, source string) {
	switch {
	case versionByBuildFlag != "":
		return versionByBuildFlag, "build"
	case c.Version != "":
		return c.Version, "conf"
	default:
		return NoVersion, "none"
	}
}

func SetVersion(c *Conf, versionByBuildFlag string) {
	var source string
	Version, source = resolveVersion(c, versionByBuildFlag)
	zap.L().Info("qec simulator version", zap.String("version", Version), zap.String("source", source))
}
