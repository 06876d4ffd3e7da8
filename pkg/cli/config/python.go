package config

import "github.com/urfave/cli/v3"

// Python holds toolchain and build configuration
type Python struct {
	Bin          string
	VersionPin   string
	BuildDeps    []string
	BuildCommand []string
	WorkDir      string
}

// Flags returns CLI flags for Python toolchain configuration
func (c *Python) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "python-bin",
			Usage:       "Python interpreter to provision builds with",
			Value:       "python3",
			Destination: &c.Bin,
			Sources:     cli.EnvVars("SLIPWAY_PYTHON_BIN"),
		},
		&cli.StringFlag{
			Name:        "python-version-pin",
			Usage:       "Require the interpreter to report this version (exact or prefix, e.g. 3.11)",
			Destination: &c.VersionPin,
			Sources:     cli.EnvVars("SLIPWAY_PYTHON_VERSION_PIN"),
		},
		&cli.StringSliceFlag{
			Name:        "build-dep",
			Usage:       "Build dependency to install before packaging (repeatable)",
			Destination: &c.BuildDeps,
			Sources:     cli.EnvVars("SLIPWAY_BUILD_DEPS"),
		},
		&cli.StringSliceFlag{
			Name:        "build-command",
			Usage:       "Interpreter arguments that produce the source distribution (repeatable)",
			Destination: &c.BuildCommand,
			Sources:     cli.EnvVars("SLIPWAY_BUILD_COMMAND"),
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Directory for checkout working trees (default: system temp)",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("SLIPWAY_WORK_DIR"),
		},
	}
}
