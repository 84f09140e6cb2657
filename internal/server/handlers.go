package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"
	"go.uber.org/zap"
)

const defaultLimit = 200

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":      s.ds.Sources,
		"limit_layout": s.ds.LimitLayout,
		"limit_sheets": s.ds.LimitSheets,
		"limit_count":  len(s.ds.Limits),
		"warnings":     s.ds.Warnings,
	})
}

// handleOptions lists the values a client can filter on. Machines and
// variables follow the process selection.
func (s *Server) handleOptions(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	byProcess := match.Filter{Processes: f.Processes}.Apply(s.ds.Measurements)
	byMachine := match.Filter{Processes: f.Processes, Machines: f.Machines}.Apply(s.ds.Measurements)
	from, to := match.TimeRange(byMachine)
	c.JSON(http.StatusOK, gin.H{
		"processes": models.Processes,
		"machines":  match.Machines(byProcess),
		"variables": match.Variables(byMachine),
		"from":      from,
		"to":        to,
	})
}

func (s *Server) handleMeasurements(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
	}

	report := s.ds.Check(f)
	matches := report.Matches
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(report.Matches),
		"out_of_spec": report.OutOfSpec(),
		"matches":     matches,
	})
}

func (s *Server) handleLimits(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report := s.ds.Check(f)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(report.Limits),
		"limits": report.Limits,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report := s.ds.Check(f)
	c.JSON(http.StatusOK, gin.H{
		"count":     len(report.Summaries),
		"summaries": report.Summaries,
	})
}

func (s *Server) handleExportCSV(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ms := f.Apply(s.ds.Measurements)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="datos_filtrados.csv"`)
	c.Status(http.StatusOK)
	if err := output.WriteMeasurementsCSV(c.Writer, ms); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

// parseFilter reads repeated process, machine and variable parameters and
// from/to timestamps (RFC 3339 or YYYY-MM-DD).
func parseFilter(c *gin.Context) (match.Filter, error) {
	var f match.Filter
	for _, raw := range c.QueryArray("process") {
		p, err := models.ParseProcess(raw)
		if err != nil {
			return f, err
		}
		f.Processes = append(f.Processes, p)
	}
	f.Machines = c.QueryArray("machine")
	f.Variables = c.QueryArray("variable")

	var err error
	if f.From, err = match.ParseTime(c.Query("from")); err != nil {
		return f, fmt.Errorf("invalid from: %w", err)
	}
	if f.To, err = match.ParseTime(c.Query("to")); err != nil {
		return f, fmt.Errorf("invalid to: %w", err)
	}
	return f, nil
}
