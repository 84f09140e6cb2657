// Package models defines data structures for measurement and limit records.
package models

import (
	"fmt"
	"strings"
)

// Process identifies a manufacturing test process.
type Process string

const (
	// ProcessCD is the CD test process.
	ProcessCD Process = "CD"
	// ProcessCW is the CW test process.
	ProcessCW Process = "CW"
)

// Processes lists the known processes in display order.
var Processes = []Process{ProcessCD, ProcessCW}

// ParseProcess parses a process label case-insensitively.
func ParseProcess(s string) (Process, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CD":
		return ProcessCD, nil
	case "CW":
		return ProcessCW, nil
	default:
		return "", fmt.Errorf("unknown process %q (must be CD or CW)", s)
	}
}
