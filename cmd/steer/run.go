package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/milk9111/steering/ecs/entity"
	"github.com/milk9111/steering/internal/config"
	"github.com/milk9111/steering/prefabs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Step a scene without a window and dump the final gradients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd.Context(), a.cfg, a.logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntP("ticks", "n", 600, "frames to simulate")
	cmd.Flags().String("dump", "", `write a YAML snapshot to this file ("-" for stdout)`)
	cmd.Flags().Int("log-every", 60, "log headings every n frames (0 disables)")
	return cmd
}

func runHeadless(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	spec, err := prefabs.LoadSceneSpec(cfg.Sim.Scene)
	if err != nil {
		return err
	}
	sim, err := entity.NewSim(spec, entity.Options{
		Logger:   logger,
		DT:       cfg.Sim.DT,
		LogEvery: cfg.Sim.LogEvery,
	})
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Sim.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sim.Step()
	}
	logger.Info("run complete",
		zap.String("scene", spec.Name),
		zap.Uint64("frames", sim.Frame()),
		zap.Int("headings", sim.Resolved()),
	)

	if cfg.Sim.Dump == "" {
		return nil
	}
	data, err := yaml.Marshal(sim.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if cfg.Sim.Dump == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.Sim.Dump, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logger.Info("snapshot written", zap.String("path", cfg.Sim.Dump))
	return nil
}
