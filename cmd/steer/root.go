package main

import (
	"fmt"

	"github.com/milk9111/steering/internal/config"
	"github.com/milk9111/steering/internal/observability"
	"github.com/milk9111/steering/prefabs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"logger.level":  "log-level",
	"logger.format": "log-format",
	"sim.scene":     "scene",
	"sim.ticks":     "ticks",
	"sim.dt":        "dt",
	"sim.dump":      "dump",
	"sim.log_every": "log-every",
	"viewer.scale":  "scale",
	"viewer.watch":  "watch",
	"viewer.dir":    "dir",
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "steer",
		Short:         "Context steering sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./steering.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console or json)")
	flags.StringP("scene", "s", "scene.yaml", "scene prefab name or path")
	flags.Float64("dt", 1.0/60.0, "physics step in seconds")
	flags.String("dir", "prefabs", "on-disk prefab directory")

	root.AddCommand(newRunCmd(a), newViewCmd(a))
	return root
}

func (a *app) initialize(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	observability.Initialize(cfg.Logger, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
	prefabs.SetDir(cfg.Viewer.Dir)

	a.cfg = cfg
	a.logger = observability.GetLogger()
	a.logger.Debug("config loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.String("scene", cfg.Sim.Scene),
		zap.String("prefab_dir", cfg.Viewer.Dir),
	)
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
