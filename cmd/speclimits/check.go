package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"
	"go.uber.org/zap"
)

var errViolations = errors.New("measurements outside specification limits")

func newCheckCmd() *cobra.Command {
	var (
		filters         filterFlags
		format          string
		failOnViolation bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Match measurements against limits and summarize each series",
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
			violations := report.OutOfSpec()
			logger.Info("check complete",
				zap.Int("measurements", len(report.Matches)),
				zap.Int("series", len(report.Summaries)),
				zap.Int("applicable_limits", len(report.Limits)),
				zap.Int("out_of_spec", violations))

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				err = printSummaries(out, report)
			case "json":
				var data []byte
				data, err = output.ToJSON(report, true)
				if err == nil {
					_, err = fmt.Fprintln(out, string(data))
				}
			case "csv":
				err = output.WriteMatchesCSV(out, report.Matches)
			default:
				err = fmt.Errorf("invalid format: %s (must be table, json or csv)", format)
			}
			if err != nil {
				return err
			}

			if failOnViolation && violations > 0 {
				return fmt.Errorf("%w: %d", errViolations, violations)
			}
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table (summary), json, csv (every match)")
	cmd.Flags().BoolVar(&failOnViolation, "fail-on-violation", false, "Exit non-zero when any measurement is out of spec")
	return cmd
}

func printSummaries(w io.Writer, r *speclimits.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROCESS\tMACHINE\tVARIABLE\tN\tMEAN\tSTD\tLSL\tUSL\tBELOW\tABOVE\tCPK")
	for _, s := range r.Summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			s.Process, orDash(s.Machine), s.Variable, s.ValidCount,
			round(s.Mean), round(s.StdDev),
			orDash(output.FormatFloat(s.Lower)), orDash(output.FormatFloat(s.Upper)),
			s.Below, s.Above, round(s.Cpk))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d measurements, %d out of spec, %d applicable limits\n",
		len(r.Matches), r.OutOfSpec(), len(r.Limits))
	return err
}

func round(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4g", *v)
}
