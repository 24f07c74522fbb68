package main

import (
	"fmt"
	"os"

	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/urban-heat-island/internal/cache"
	"github.com/forest-guardian/urban-heat-island/internal/catalog"
	"github.com/forest-guardian/urban-heat-island/internal/config"
	"github.com/forest-guardian/urban-heat-island/internal/geotiff"
	"github.com/forest-guardian/urban-heat-island/internal/notification"
	"github.com/forest-guardian/urban-heat-island/internal/pipeline"
	"github.com/forest-guardian/urban-heat-island/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCommand(logger *logrus.Logger) *cobra.Command {
	var (
		configPath string
		quiet      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Composite, sample and correlate one configured analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !quiet {
				printBanner()
			}
			reporter := reporterFor(logger)
			err := runAnalysis(cmd, logger, reporter, configPath, !quiet)
			if err != nil {
				if nerr := reporter.Failure(fmt.Sprintf("Urban heat island CLI\n\nRun %s failed: %s", configPath, err.Error())); nerr != nil {
					logger.WithError(nerr).Warn("failed to send failure notification")
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the run configuration (YAML)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the banner and progress bars")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func reporterFor(logger *logrus.Logger) notification.Reporter {
	reporters := notification.Multi{notification.NewConsole(os.Stdout, logger)}
	if discord := notification.NewDiscordFromEnv(); discord.Enabled() {
		reporters = append(reporters, discord)
	}
	return reporters
}

func runAnalysis(cmd *cobra.Command, logger *logrus.Logger, reporter notification.Reporter, configPath string, progress bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.WithField("run", cfg.Name)

	p := pipeline.New(cfg, catalog.NewLocal(cfg.Catalog, geotiff.Reader{}, log), log)
	p.Cache = cache.NewComposites()
	p.Progress = progress

	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if len(res.Skipped) > 0 {
		bannercolor.Yellow("Skipped %d image(s) missing profile bands: %v", len(res.Skipped), res.Skipped)
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	db, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	pub := &pipeline.Publisher{
		Exporter: &geotiff.Sink{
			Dir:        cfg.Export.Dir,
			MaxPixels:  cfg.Export.MaxPixels,
			Resolution: cfg.Export.Resolution,
			Native:     cfg.Profile().Resolution,
			Logger:     log,
		},
		Store:    db,
		Reporter: reporter,
		Logger:   log,
	}
	out, err := pub.Publish(cmd.Context(), cfg, res)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Urban heat island CLI\n\nSuccessful analysis %s!\n%s\nComposite: %s\nSample: %s\nRun: %s",
		cfg.Name, res.Correlation, out.Composite, out.SampleCSV, out.RunID)
	if err := reporter.Success(message); err != nil {
		log.WithError(err).Warn("failed to send success notification")
	}
	return nil
}
