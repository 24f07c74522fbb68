package main

import (
	"fmt"

	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/urban-heat-island/internal/catalog"
	"github.com/forest-guardian/urban-heat-island/internal/config"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSensorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sensors",
		Short: "List the supported sensor profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			bannercolor.Green("Available sensors:")
			for _, name := range sensor.Names() {
				profile, err := sensor.Lookup(name)
				if err != nil {
					return err
				}
				thermal := "no thermal band"
				if band, ok := profile.Band(sensor.Thermal); ok {
					thermal = "thermal " + band
				}
				fmt.Printf("- %s (%vm, NDWI %s, %s)\n", name, profile.Resolution, profile.NDWI, thermal)
			}
			return nil
		},
	}
}

func newInspectCommand(logger *logrus.Logger) *cobra.Command {
	var (
		dir    string
		source string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the acquisition dates held by a local catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.NewLocal(dir, nil, logger).Entries()
			if err != nil {
				return err
			}
			inv, err := catalog.Inventory(entries, source)
			if err != nil {
				return err
			}
			if len(inv) == 0 {
				bannercolor.Yellow("No images found in %s", dir)
				return nil
			}
			bannercolor.Green("Acquisitions in %s:", dir)
			for _, date := range catalog.InventoryDates(inv) {
				for _, e := range inv[date] {
					fmt.Printf("- %s %s cloud=%.2f bands=%s\n", date.Format(config.DateLayout), e.Source, e.CloudFraction, e.Bands)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "catalog", properties.DataPath("catalog"), "local catalog directory")
	cmd.Flags().StringVar(&source, "source", "", "only list images of this source")
	return cmd
}
