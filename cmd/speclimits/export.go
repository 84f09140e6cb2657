package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/internal/store"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"
	"go.uber.org/zap"
)

func newExportCmd() *cobra.Command {
	var (
		filters    filterFlags
		format     string
		outputPath string
		pretty     bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered long-format measurements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.filter()
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			report := ds.Check(f)
			logger.Info("exporting",
				zap.String("format", format),
				zap.Int("measurements", len(report.Measurements)))

			switch format {
			case "sqlite":
				if outputPath == "" {
					return fmt.Errorf("--output is required for sqlite")
				}
				st, err := store.Open(outputPath)
				if err != nil {
					return err
				}
				defer st.Close()
				return st.SaveReport(cmd.Context(), report)
			case "xlsx":
				if outputPath == "" {
					return fmt.Errorf("--output is required for xlsx")
				}
				return writeTo(outputPath, cmd.OutOrStdout(), func(w io.Writer) error {
					return output.WriteWorkbook(w, output.Export{
						Measurements: report.Measurements,
						Limits:       report.Limits,
						Matches:      report.Matches,
						Summaries:    report.Summaries,
					})
				})
			case "csv":
				return writeTo(outputPath, cmd.OutOrStdout(), func(w io.Writer) error {
					return output.WriteMeasurementsCSV(w, report.Measurements)
				})
			case "json":
				return writeTo(outputPath, cmd.OutOrStdout(), func(w io.Writer) error {
					data, err := output.ToJSON(report.Measurements, pretty)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(w, string(data))
					return err
				})
			default:
				return fmt.Errorf("invalid format: %s (must be csv, json, xlsx or sqlite)", format)
			}
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json, xlsx, sqlite")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// writeTo runs write against path, or stdout when path is empty.
func writeTo(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return file.Close()
}
