package model

import "math"

// ProductionEstimate holds the results of a panel ordering calculation.
type ProductionEstimate struct {
	BoardsPerPanel    int     `json:"boards_per_panel"`
	BoardArea         float64 `json:"board_area"`          // Area of the boards on one panel (sq mm)
	PanelArea         float64 `json:"panel_area"`          // Area of one panel (sq mm)
	Utilization       float64 `json:"utilization"`         // Board area as a percentage of the panel
	Quantity          int     `json:"quantity"`            // Boards ordered
	PanelsNeededExact float64 `json:"panels_needed_exact"` // Exact fractional number of panels
	PanelsNeededMin   int     `json:"panels_needed_min"`   // Minimum panels (ceiling of exact)
	PanelsWithScrap   int     `json:"panels_with_scrap"`   // Recommended panels including scrap allowance
	ScrapPercent      float64 `json:"scrap_percent"`       // Scrap allowance applied (e.g., 5 for 5%)
	EstimatedCost     float64 `json:"estimated_cost"`      // Total cost if pricing available
	PricePerPanel     float64 `json:"price_per_panel"`     // Price used for estimation
	CostPerBoard      float64 `json:"cost_per_board"`
}

// CalculateProductionEstimate computes how many panels to order for a
// quantity of boards, given the panel layout.
func CalculateProductionEstimate(boards []Board, panelWidth, panelHeight float64, quantity int, scrapPercent, pricePerPanel float64) ProductionEstimate {
	var boardArea float64
	for _, b := range boards {
		for _, s := range b.Shapes() {
			boardArea += s.Area()
		}
	}
	est := ProductionEstimate{
		BoardsPerPanel: len(boards),
		BoardArea:      boardArea,
		PanelArea:      panelWidth * panelHeight,
		Quantity:       quantity,
		ScrapPercent:   scrapPercent,
		PricePerPanel:  pricePerPanel,
	}
	if est.PanelArea > 0 {
		est.Utilization = boardArea / est.PanelArea * 100
	}
	if len(boards) == 0 || quantity <= 0 {
		return est
	}

	est.PanelsNeededExact = float64(quantity) / float64(len(boards))
	est.PanelsNeededMin = int(math.Ceil(est.PanelsNeededExact))

	// Apply scrap allowance
	scrapFactor := 1.0 + (scrapPercent / 100.0)
	est.PanelsWithScrap = int(math.Ceil(est.PanelsNeededExact * scrapFactor))
	if est.PanelsWithScrap < est.PanelsNeededMin {
		est.PanelsWithScrap = est.PanelsNeededMin
	}

	est.EstimatedCost = float64(est.PanelsWithScrap) * pricePerPanel
	est.CostPerBoard = est.EstimatedCost / float64(quantity)
	return est
}
