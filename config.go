package dcctest

import (
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/vfx-infra/dcctest/flags"
	"github.com/vfx-infra/dcctest/registry"
	"github.com/vfx-infra/dcctest/statsline"
	"github.com/vfx-infra/dcctest/types"
)

// NewRunConfig assembles the run configuration. A dispatched child finds
// its complete configuration in the parent's environment handoff and
// ignores flags and config files; everything else starts from the CLI
// flags and the located config file.
func NewRunConfig(ctx *cli.Context, log *slog.Logger) (*types.RunConfig, error) {
	if cfg, ok, err := statsline.HandoffFromEnv(); err != nil {
		return nil, err
	} else if ok {
		log.Debug("Recovered configuration from parent handoff",
			"context", cfg.Context, "target", cfg.Target)
		return cfg, nil
	}

	cfg := &types.RunConfig{
		Target:       ctx.String(flags.Target.Name),
		FilterTokens: ctx.Args().Slice(),
		FailFast:     ctx.Bool(flags.FailFast.Name),
		Limit:        ctx.Int(flags.Limit.Name),
		GlobalLimit:  ctx.Int(flags.GlobalLimit.Name),
		DebugMode:    ctx.Bool(flags.Debug.Name),
	}
	if err := registry.LoadInto(cfg, ctx.String(flags.Cfg.Name), log); err != nil {
		return nil, err
	}
	return cfg, nil
}
