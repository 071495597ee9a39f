package api

import (
	"fmt"
	"net/http"

	"github.com/hearthline/hearth/internal/advisory"
	"github.com/hearthline/hearth/pkg/report"
)

// handleReport renders the advisory snapshot as a downloadable PDF.
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := r.currentSnapshot(w)
	if snap == nil {
		return
	}

	data := buildReportData(snap, r.deps.HomeLabel)
	pdf, err := r.deps.Reports.Generate(data)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "report_failed",
			sanitizeErrorForClient(err, "Failed to generate report"), nil)
		return
	}

	filename := fmt.Sprintf("hearth-advisory-%s.pdf", snap.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	_, _ = w.Write(pdf)
}

func buildReportData(snap *advisory.Snapshot, homeLabel string) *report.ReportData {
	data := &report.ReportData{
		HomeLabel:        homeLabel,
		GeneratedAt:      snap.GeneratedAt,
		ClimateZone:      string(snap.ClimateZone),
		Season:           string(snap.Season),
		Mode:             string(snap.ModeContext.Mode),
		ConfidenceBucket: string(snap.Confidence.Bucket),
		CriticalCoverage: snap.Confidence.CriticalCoverage,
	}
	if primary := snap.Scoring.Primary; primary != nil {
		data.PrimaryKey = primary.System.SystemKey
		data.PrimaryScore = primary.Score
		data.PrimaryExplanation = primary.Explanation
	}
	for _, s := range snap.Scoring.Scored {
		data.Systems = append(data.Systems, report.SystemRow{
			SystemKey:          s.System.SystemKey,
			Name:               s.System.Name,
			FailureProbability: s.FailureProbability,
			ReplacementCost:    s.ReplacementCost,
			UrgencyMultiplier:  s.UrgencyMultiplier,
			Score:              s.Score,
		})
	}
	return data
}
