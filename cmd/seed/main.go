package main

import (
	"context"
	"fmt"
	"os"

	"electromatrix/internal/app"
	"electromatrix/internal/config"
	"electromatrix/internal/logger"
	"electromatrix/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles what every subcommand needs once the root has connected
type env struct {
	app    *app.App
	seeder *seed.Seeder
	data   *seed.Data
}

func newRootCmd() *cobra.Command {
	var (
		dataPath string
		e        env
	)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load teams, grid questions and section challenges",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel)

			e.data, err = loadData(dataPath)
			if err != nil {
				return err
			}
			e.app, err = app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			e.seeder = seed.NewSeeder(e.app.Store, log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.app == nil {
				return nil
			}
			e.app.Log.Sync()
			return e.app.Close(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&dataPath, "data", "", "seed YAML file (built-in data when empty)")
	cmd.AddCommand(newTeamsCmd(&e), newGridCmd(&e), newSectionsCmd(&e), newAllCmd(&e))
	return cmd
}

func loadData(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed data: %w", err)
	}
	return seed.Parse(raw)
}

func newTeamsCmd(e *env) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Create team accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedTeams(cmd.Context(), e, reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "re-hash passwords of existing teams")
	return cmd
}

func newGridCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Upsert the grid question pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedGrid(cmd.Context(), e)
		},
	}
}

func newSectionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "Upsert section meta-questions and composite images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.seeder.Sections(cmd.Context(), e.data.Sections, e.data.Metas)
		},
	}
}

func newAllCmd(e *env) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Seed teams, grid pool and sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := seedTeams(ctx, e, reset); err != nil {
				return err
			}
			if err := seedGrid(ctx, e); err != nil {
				return err
			}
			return e.seeder.Sections(ctx, e.data.Sections, e.data.Metas)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "re-hash passwords of existing teams")
	return cmd
}

func seedTeams(ctx context.Context, e *env, reset bool) error {
	res, err := e.seeder.Teams(ctx, e.data.Teams, reset)
	if err != nil {
		return err
	}
	teams, err := e.app.Store.Teams.List(ctx)
	if err != nil {
		return err
	}
	e.app.Log.Info("teams seeded",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("total", len(teams)),
	)
	return nil
}

func seedGrid(ctx context.Context, e *env) error {
	if _, err := e.seeder.Grid(ctx, e.data.Grid); err != nil {
		return err
	}
	// Servers read the pool through the cache.
	return e.app.Pool.Invalidate(ctx)
}
