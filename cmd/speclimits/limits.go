package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/limits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"
	"go.uber.org/zap"
)

func newLimitsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Parse the limits workbook and print the rules found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cfg.Options()
			if opts.LimitsPath == "" {
				return errors.New("no limits workbook configured")
			}
			res, err := limits.ParseFile(opts.LimitsPath, limits.Options{
				Layout: opts.LimitsLayout,
				Sheet:  opts.LimitsSheet,
			}, opts.LimitsRange)
			if res != nil {
				for _, w := range res.Warnings {
					logger.Warn("limits", zap.String("detail", w))
				}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", opts.LimitsPath, err)
			}
			logger.Info("limits parsed",
				zap.String("layout", string(res.Layout)),
				zap.Strings("sheets", res.Sheets),
				zap.Int("rules", len(res.Rules)))

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := output.ToJSON(res, true)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			case "csv":
				return output.WriteLimitsCSV(out, res.Rules)
			case "table":
				return printLimits(out, res.Rules)
			default:
				return fmt.Errorf("invalid format: %s (must be table, json or csv)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, csv")
	return cmd
}

func printLimits(w io.Writer, rules []models.LimitRule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROCESS\tMACHINE\tVARIABLE\tLOWER\tUPPER\tSOURCE")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s!%d\n",
			orDash(string(r.Process)), r.Machine, r.Variable,
			orDash(output.FormatFloat(r.Lower)), orDash(output.FormatFloat(r.Upper)), r.Sheet, r.Row)
	}
	return tw.Flush()
}
