package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/co2-dashboard/internal/export"
)

var (
	renderFilter filterFlags
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render all dashboard views for one filter state",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(renderFormat)
		if err != nil {
			return err
		}

		env, err := initDashboard(cfg, "render", nil)
		if err != nil {
			return err
		}
		f, err := renderFilter.state(env.Dashboard.DefaultFilter())
		if err != nil {
			return err
		}

		views, err := env.Dashboard.Render(cmd.Context(), f)
		if err != nil {
			return err
		}
		return export.WriteViews(cmd.OutOrStdout(), format, views)
	},
}

func init() {
	renderFilter.register(renderCmd)
	renderCmd.Flags().StringVar(&renderFormat, "format", string(export.FormatJSON), "output format: json, yaml or text")
	rootCmd.AddCommand(renderCmd)
}
