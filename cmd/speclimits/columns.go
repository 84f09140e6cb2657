package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
	"go.uber.org/zap"
)

type columnsReport struct {
	Process models.Process `json:"process"`
	Path    string         `json:"path"`
	Columns []string       `json:"columns,omitempty"`
	Rows    int            `json:"rows"`
	Schema  *models.Schema `json:"schema,omitempty"`
	Preview []previewRow   `json:"preview,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// previewRow maps each header to the typed value of its cell.
type previewRow map[string]interface{}

func previewRows(t *models.Table, n int) []previewRow {
	n = min(max(n, 0), len(t.Rows))
	var out []previewRow
	for _, row := range t.Rows[:n] {
		r := make(previewRow, len(t.Headers))
		for i, h := range t.Headers {
			if h == "" || i >= len(row) || row[i] == "" {
				continue
			}
			r[h] = parser.ParseValue(row[i])
		}
		out = append(out, r)
	}
	return out
}

func newColumnsCmd() *cobra.Command {
	var (
		format  string
		preview int
	)
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show the columns of each source and the roles detected for them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cfg.Options()
			var reports []columnsReport
			for _, src := range opts.Sources {
				r := columnsReport{Process: src.Process, Path: src.Path}
				t, err := parser.ReadTable(src.Path, parser.TableOptions{Sheet: src.Sheet})
				if err != nil {
					r.Error = err.Error()
					reports = append(reports, r)
					continue
				}
				r.Columns, r.Rows = t.Headers, len(t.Rows)
				if format == "json" {
					r.Preview = previewRows(t, preview)
				}
				schema, err := normalize.DetectSchema(t, opts.Rules)
				if err != nil {
					r.Error = err.Error()
					logger.Warn("schema detection failed", zap.String("source", src.Path), zap.Error(err))
				} else {
					r.Schema = &schema
				}
				reports = append(reports, r)
			}

			switch format {
			case "json":
				data, err := output.ToJSON(reports, true)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			case "table":
				return printColumns(cmd.OutOrStdout(), reports)
			default:
				return fmt.Errorf("invalid format: %s (must be table or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json")
	cmd.Flags().IntVar(&preview, "preview", 3, "Leading rows included in json output, with numbers typed")
	return cmd
}

func printColumns(w io.Writer, reports []columnsReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\n", r.Process, r.Path)
		if r.Columns != nil {
			fmt.Fprintf(tw, "  rows\t%d\n", r.Rows)
			fmt.Fprintf(tw, "  columns\t%s\n", strings.Join(r.Columns, ", "))
		}
		if r.Schema != nil {
			fmt.Fprintf(tw, "  machine\t%s\n", r.Schema.MachineColumn)
			fmt.Fprintf(tw, "  date\t%s\n", orDash(r.Schema.DateColumn))
			fmt.Fprintf(tw, "  time\t%s\n", orDash(r.Schema.TimeColumn))
			vars := strings.Join(r.Schema.Variables, ", ")
			if r.Schema.VariableFallback {
				vars += " (by name)"
			}
			fmt.Fprintf(tw, "  variables\t%s\n", orDash(vars))
			fmt.Fprintf(tw, "  excluded\t%s\n", orDash(strings.Join(r.Schema.Excluded, ", ")))
		}
		if r.Error != "" {
			fmt.Fprintf(tw, "  error\t%s\n", r.Error)
		}
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
