package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/urban-heat-island/internal/notification"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func printBanner() {
	figure1 := figure.NewFigure("Urban Heat", "isometric1", true)
	figure2 := figure.NewFigure("Island", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(properties.LogLevel())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func newRootCommand(logger *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "uhi",
		Short:         "Urban heat island analysis over Landsat and Sentinel-2 imagery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(logger),
		newSensorsCommand(),
		newInspectCommand(logger),
	)
	return root
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			errMessage := fmt.Sprintf("Urban heat island CLI panic:\n\n%v\n\nStack trace:\n%s", r, debug.Stack())
			if err := notification.NewDiscordFromEnv().Failure(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
			os.Exit(2)
		}
	}()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("\033[33mFailed to load .env: %s\033[0m\n", err.Error())
	}
	logger := newLogger()
	godal.RegisterAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(logger).ExecuteContext(ctx); err != nil {
		fmt.Printf("\n\033[31mError: %s\033[0m\n", err.Error())
		stop()
		os.Exit(1)
	}
}
