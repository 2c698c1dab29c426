package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/co2-dashboard/internal/export"
)

var controlsFormat string

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Print the year slider range and selector options",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(controlsFormat)
		if err != nil {
			return err
		}

		env, err := initDashboard(cfg, "controls", nil)
		if err != nil {
			return err
		}
		c, err := env.Dashboard.Controls(cmd.Context())
		if err != nil {
			return err
		}
		return export.WriteControls(cmd.OutOrStdout(), format, c)
	},
}

func init() {
	controlsCmd.Flags().StringVar(&controlsFormat, "format", string(export.FormatText), "output format: json, yaml or text")
	rootCmd.AddCommand(controlsCmd)
}
