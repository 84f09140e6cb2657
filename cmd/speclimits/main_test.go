package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

func writeInputs(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}
	return []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--log-level", "error",
		"--cd", write("cd.csv", "Maquina,Fecha,GET_VOLT\nM1,02/01/2024,3.3\nM1,02/02/2024,3.9\n"),
		"--cw", write("cw.csv", "Maquina,Fecha,RSSI\nM1,02/01/2024,-40\n"),
		"--limits", write("limites.csv", "Maquina,Variable,LSL,USL,Tipo\nM1,GET_VOLT,3.0,3.6,CD\n"),
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, append(writeInputs(t), "check", "--format", "csv")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[2], ",above"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], ",no_limit"), lines[3])

	_, err = run(t, append(writeInputs(t), "check", "--fail-on-violation", "--process", "CD")...)
	assert.True(t, errors.Is(err, errViolations))

	_, err = run(t, append(writeInputs(t), "check", "--fail-on-violation", "--process", "CW")...)
	assert.NoError(t, err)
}

func TestExportCommand(t *testing.T) {
	out, err := run(t, append(writeInputs(t), "export", "--machine", "M1", "--from", "2024-02-02")...)
	require.NoError(t, err)
	assert.Equal(t, "machine,variable,value,timestamp,process\nM1,GET_VOLT,3.9,2024-02-02T00:00:00Z,CD\n", out)
}

func TestLimitsCommand(t *testing.T) {
	out, err := run(t, append(writeInputs(t), "limits", "--format", "csv")...)
	require.NoError(t, err)
	assert.Contains(t, out, "M1,GET_VOLT,3,3.6,CD,limites.csv,2")
}

func TestInvalidFlags(t *testing.T) {
	_, err := run(t, append(writeInputs(t), "--limits-layout", "wide", "check")...)
	assert.Error(t, err)

	_, err = run(t, append(writeInputs(t), "check", "--process", "CX")...)
	assert.Error(t, err)
}

func TestFilterFlags(t *testing.T) {
	f := filterFlags{processes: []string{"cw"}, machines: []string{"M1"}, from: "2024-02-01"}
	got, err := f.filter()
	require.NoError(t, err)
	assert.Equal(t, []models.Process{models.ProcessCW}, got.Processes)
	assert.Equal(t, []string{"M1"}, got.Machines)
	require.NotNil(t, got.From)
	assert.Nil(t, got.To)

	f = filterFlags{to: "tomorrow"}
	_, err = f.filter()
	assert.Error(t, err)
}

func TestColumnsCommand(t *testing.T) {
	noMachine := filepath.Join(t.TempDir(), "cd.csv")
	require.NoError(t, os.WriteFile(noMachine, []byte("Fecha,GET_VOLT\n02/01/2024,3.3\n"), 0644))

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, out string)
	}{
		{
			name: "table",
			args: []string{"columns"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Maquina, Fecha, GET_VOLT")
				assert.Contains(t, out, "GET_VOLT")
				assert.Contains(t, out, "RSSI")
			},
		},
		{
			name: "json with preview",
			args: []string{"columns", "--format", "json", "--preview", "1"},
			check: func(t *testing.T, out string) {
				var reports []columnsReport
				require.NoError(t, json.Unmarshal([]byte(out), &reports))
				require.Len(t, reports, 2)
				assert.Equal(t, models.ProcessCD, reports[0].Process)
				assert.Equal(t, 2, reports[0].Rows)
				require.NotNil(t, reports[0].Schema)
				assert.Equal(t, "Maquina", reports[0].Schema.MachineColumn)
				require.Len(t, reports[0].Preview, 1)
				assert.Equal(t, previewRow{"Maquina": "M1", "Fecha": "02/01/2024", "GET_VOLT": 3.3}, reports[0].Preview[0])
				require.Len(t, reports[1].Preview, 1)
				assert.Equal(t, -40.0, reports[1].Preview[0]["RSSI"])
			},
		},
		{
			name: "json without preview",
			args: []string{"columns", "--format", "json", "--preview", "0"},
			check: func(t *testing.T, out string) {
				assert.NotContains(t, out, `"preview"`)
			},
		},
		{
			name: "missing machine column",
			args: []string{"--cd", noMachine, "columns", "--format", "json"},
			check: func(t *testing.T, out string) {
				var reports []columnsReport
				require.NoError(t, json.Unmarshal([]byte(out), &reports))
				require.Len(t, reports, 2)
				assert.Nil(t, reports[0].Schema)
				assert.NotEmpty(t, reports[0].Error)
				assert.Empty(t, reports[1].Error)
			},
		},
		{
			name:    "invalid format",
			args:    []string{"columns", "--format", "yaml"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(writeInputs(t), tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestServeCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "stops with context", args: []string{"serve", "--addr", "127.0.0.1:0"}},
		{name: "bad address", args: []string{"serve", "--addr", "127.0.0.1:-1"}, wantErr: true},
		{name: "extra argument", args: []string{"serve", "now"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, err := runContext(t, ctx, append(writeInputs(t), tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
