package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "DCCTEST"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Target = &cli.StringFlag{
		Name:    "target",
		Value:   ".",
		EnvVars: prefixEnvVars("TARGET"),
		Usage:   "Path to the folder from which to discover test files",
	}
	Cfg = &cli.StringFlag{
		Name:    "cfg",
		Value:   "",
		EnvVars: prefixEnvVars("CFG"),
		Usage:   "Path to the config file (default: './.config', then '../.config')",
	}
	FailFast = &cli.BoolFlag{
		Name:    "failfast",
		Value:   true,
		EnvVars: prefixEnvVars("FAILFAST"),
		Usage:   "Stop the run after the first test file with failures or errors",
	}
	Limit = &cli.IntFlag{
		Name:    "limit",
		Value:   0,
		EnvVars: prefixEnvVars("LIMIT"),
		Usage:   "Maximum number of test files to run per context (0 = unlimited)",
	}
	GlobalLimit = &cli.IntFlag{
		Name:    "globallimit",
		Value:   0,
		EnvVars: prefixEnvVars("GLOBALLIMIT"),
		Usage:   "Maximum number of test files to run across all contexts (0 = unlimited)",
	}
	Debug = &cli.BoolFlag{
		Name:    "debug",
		Value:   false,
		EnvVars: prefixEnvVars("DEBUG"),
		Usage:   "Enable verbose diagnostics",
	}
	Init = &cli.BoolFlag{
		Name:    "init",
		Value:   false,
		EnvVars: prefixEnvVars("INIT"),
		Usage:   "Write a commented sample config file into the target folder and exit",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn, error",
	}
	ServeMetrics = &cli.BoolFlag{
		Name:    "serve-metrics",
		Value:   false,
		EnvVars: prefixEnvVars("SERVE_METRICS"),
		Usage:   "Serve Prometheus metrics and a health endpoint for the duration of the run",
	}
)

var Flags = []cli.Flag{
	Target,
	Cfg,
	FailFast,
	Limit,
	GlobalLimit,
	Debug,
	Init,
	LogLevel,
	ServeMetrics,
}
