package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/export"
)

var (
	exportFilter filterFlags
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all dashboard views to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initDashboard(cfg, "export", nil)
		if err != nil {
			return err
		}
		f, err := exportFilter.state(env.Dashboard.DefaultFilter())
		if err != nil {
			return err
		}

		views, err := env.Dashboard.Render(cmd.Context(), f)
		if err != nil {
			return err
		}
		if err := export.SaveXLSX(exportOut, views); err != nil {
			return err
		}

		zap.L().Info("exported views",
			zap.String("path", exportOut),
			zap.Int("year", f.Year),
			zap.Int("table_rows", len(views.Table)),
		)
		return nil
	},
}

func init() {
	exportFilter.register(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output .xlsx path")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
