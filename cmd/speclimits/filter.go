package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

// filterFlags are shared by commands that select measurements.
type filterFlags struct {
	processes []string
	machines  []string
	variables []string
	from      string
	to        string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.processes, "process", nil, "Processes to include (CD, CW); default all")
	cmd.Flags().StringSliceVar(&f.machines, "machine", nil, "Machines to include; default all")
	cmd.Flags().StringSliceVar(&f.variables, "variable", nil, "Variables to include; default all")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest timestamp (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest timestamp (RFC 3339 or YYYY-MM-DD)")
}

func (f *filterFlags) filter() (match.Filter, error) {
	var out match.Filter
	for _, raw := range f.processes {
		p, err := models.ParseProcess(raw)
		if err != nil {
			return out, err
		}
		out.Processes = append(out.Processes, p)
	}
	out.Machines = f.machines
	out.Variables = f.variables

	var err error
	if out.From, err = match.ParseTime(f.from); err != nil {
		return out, fmt.Errorf("--from: %w", err)
	}
	if out.To, err = match.ParseTime(f.to); err != nil {
		return out, fmt.Errorf("--to: %w", err)
	}
	return out, nil
}
