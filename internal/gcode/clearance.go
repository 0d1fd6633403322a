package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// SlotClearance is a slot in the substrate that the router bit cannot enter.
type SlotClearance struct {
	Index   int // Position among the substrate's slots, from 1
	CenterX float64
	CenterY float64
	Width   float64 // Narrow side of the slot's bounding box
	Tool    float64
}

// CheckSlotClearance finds the slots between boards that are narrower than
// the tool. Such slots are left uncut by the generated program and have to
// be routed separately or widened by increasing the board spacing.
func CheckSlotClearance(res model.BuildResult, toolDiameter float64) []SlotClearance {
	if toolDiameter <= 0 {
		return nil
	}
	r := toolDiameter / 2

	var out []SlotClearance
	n := 0
	for _, s := range res.Substrate {
		poly := s.Polygon()
		grown := geom.MitreBuffer(poly, r)
		for _, h := range poly.Holes {
			n++
			if slotReachable(h, grown) {
				continue
			}
			box := h.Bounds()
			size := box.Size()
			c := box.Center()
			out = append(out, SlotClearance{
				Index:   n,
				CenterX: c.X,
				CenterY: c.Y,
				Width:   math.Min(size.X, size.Y),
				Tool:    toolDiameter,
			})
		}
	}
	return out
}

// FormatClearanceWarnings produces human-readable warning messages.
func FormatClearanceWarnings(slots []SlotClearance) []string {
	var warnings []string
	for _, s := range slots {
		warnings = append(warnings, fmt.Sprintf(
			"Slot %d at (%.1f, %.1f) is %.2f mm wide, narrower than the %.2f mm tool; it will not be routed",
			s.Index, s.CenterX, s.CenterY, s.Width, s.Tool,
		))
	}
	return warnings
}
