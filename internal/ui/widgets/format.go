package widgets

import (
	"fmt"

	"github.com/piwi3910/SlabLayout/internal/gcode"
	"github.com/piwi3910/SlabLayout/internal/model"
)

func fmtStats(s gcode.Stats) string {
	return fmt.Sprintf("%d moves, %d plunges, cutting %.2f m, rapids %.2f m",
		s.Moves, s.Plunges, s.CutLength/1000, s.RapidLength/1000)
}

// SummaryText is the utilization line shown under the canvas.
func SummaryText(s model.Summary) string {
	return fmt.Sprintf("%d pieces, %.0f of %.0f cm² used (%.1f%%)",
		s.PieceCount, s.UsedCm2(), s.TotalCm2(), s.Percent())
}
