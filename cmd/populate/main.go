// Command populate purges the store and repopulates it from the source files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/database"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/jobs"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/logger"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/repository"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flags struct {
	sourceDir string
	catalog   string
	roster    string
	sales     string
	delimiter string
	seed      uint64
	schedule  string
	quiet     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "populate",
		Short:         "Populate the DealerConnect database from catalog, roster and sales files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.sourceDir, "source-dir", "", "read source files from this directory instead of the configured storage")
	root.PersistentFlags().StringVar(&f.catalog, "catalog", "", "catalog file name (overrides pipeline.catalogFile)")
	root.PersistentFlags().StringVar(&f.roster, "roster", "", "roster file name (overrides pipeline.rosterFile)")
	root.PersistentFlags().StringVar(&f.sales, "sales", "", "sales file name (overrides pipeline.salesFile)")
	root.PersistentFlags().StringVar(&f.delimiter, "delimiter", "", "CSV field separator (overrides pipeline.delimiter)")
	root.PersistentFlags().Uint64Var(&f.seed, "seed", 0, "random seed (overrides pipeline.seed)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Purge the store and repopulate it once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, f)
		},
	}
	runCmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print row progress")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Repopulate on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduled(cmd, f)
		},
	}
	scheduleCmd.Flags().StringVar(&f.schedule, "cron", "", "cron expression (overrides pipeline.schedule)")

	root.AddCommand(runCmd, scheduleCmd)
	return root
}

// env is what both subcommands need
type env struct {
	cfg          *config.Config
	log          *zap.Logger
	orchestrator *pipeline.Orchestrator
	close        func()
}

func setup(ctx context.Context, cmd *cobra.Command, f *flags, opts ...pipeline.Option) (*env, error) {
	basicCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	applyFlags(cmd, f, &cfg.Pipeline)

	sources, err := openSources(cfg, f, log)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	orch := pipeline.NewOrchestrator(repository.NewStore(db), sources, cfg.Pipeline, log, opts...)

	return &env{
		cfg:          cfg,
		log:          log,
		orchestrator: orch,
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = log.Sync()
		},
	}, nil
}

// openSources picks the directory given by --source-dir or the configured storage
func openSources(cfg *config.Config, f *flags, log *zap.Logger) (pipeline.Sources, error) {
	var (
		sources pipeline.Sources
		err     error
	)
	if f.sourceDir != "" {
		sources, err = storage.NewLocalStorage(f.sourceDir)
	} else {
		sources, err = storage.NewStorage(&cfg.Storage, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return sources, nil
}

// runOptions are the orchestrator options of a one-off run
func runOptions(progress io.Writer, quiet bool) []pipeline.Option {
	if quiet {
		return nil
	}
	return []pipeline.Option{pipeline.WithProgress(progressPrinter(progress))}
}

// applyFlags overrides pipeline settings with the flags that were set
func applyFlags(cmd *cobra.Command, f *flags, p *config.PipelineConfig) {
	set := func(name string) bool {
		fl := cmd.Flag(name)
		return fl != nil && fl.Changed
	}
	if set("catalog") {
		p.CatalogFile = f.catalog
	}
	if set("roster") {
		p.RosterFile = f.roster
	}
	if set("sales") {
		p.SalesFile = f.sales
	}
	if set("delimiter") {
		p.Delimiter = f.delimiter
	}
	if set("seed") {
		p.Seed = f.seed
	}
	if set("cron") {
		p.Schedule = f.schedule
	}
}

func runOnce(cmd *cobra.Command, f *flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, cmd, f, runOptions(cmd.ErrOrStderr(), f.quiet)...)
	if err != nil {
		return err
	}
	defer e.close()

	report, err := e.orchestrator.Run(ctx, "cli")
	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report))
	}
	return err
}

func runScheduled(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()
	e, err := setup(ctx, cmd, f)
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.Pipeline.Schedule == "" {
		return fmt.Errorf("no schedule configured: set pipeline.schedule or pass --cron")
	}

	scheduler := jobs.NewScheduler(e.log)
	job := jobs.NewRepopulateJob(e.orchestrator, e.log, e.cfg.Pipeline.TimeoutDuration())
	if _, err := jobs.RegisterRepopulateJob(scheduler, e.cfg.Pipeline.Schedule, job); err != nil {
		return err
	}
	scheduler.Start()
	fmt.Fprintf(cmd.OutOrStdout(), "Repopulating on %q, next run at %s\n",
		e.cfg.Pipeline.Schedule, scheduler.NextRun(jobs.RepopulateJobName).Format("2006-01-02 15:04:05"))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	e.log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	<-scheduler.Stop().Done()
	if report := e.orchestrator.LastReport(); report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report))
	}
	return nil
}
