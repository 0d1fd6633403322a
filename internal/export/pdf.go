package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	summaryQR    = 45.0 // QR code size on the summary page
)

// PanelSummary is the machine-readable digest of a built panel. It is
// encoded into the QR code of the PDF summary page.
type PanelSummary struct {
	Name         string  `json:"name"`
	Width        float64 `json:"width_mm"`
	Height       float64 `json:"height_mm"`
	Boards       int     `json:"boards"`
	Tabs         int     `json:"tabs"`
	VCuts        int     `json:"vcuts"`
	Perforated   int     `json:"perforated_cuts"`
	Perforations int     `json:"perforations"`
	CutMethod    string  `json:"cut_method"`
	Conflicts    int     `json:"conflicts"`
}

// Summarize collects the headline numbers of a build.
func Summarize(proj model.Project, res model.BuildResult) PanelSummary {
	s := PanelSummary{
		Name:         proj.Name,
		Boards:       len(res.Boards),
		Tabs:         len(res.Tabs),
		VCuts:        res.ScoreCount(),
		Perforated:   res.PerforatedCount(),
		Perforations: len(res.Perforations),
		CutMethod:    string(proj.Settings.CutMethod),
		Conflicts:    len(res.Conflicts),
	}
	if box, ok := res.Bounds(); ok {
		size := box.Size()
		s.Width, s.Height = size.X, size.Y
	}
	return s
}

// ExportPDF generates a PDF document of the built panel: a drawing page
// with the substrate, boards, cuts and perforations, followed by a summary
// page with the board table, the settings and a QR code of the summary.
func ExportPDF(path string, proj model.Project, res model.BuildResult) error {
	if len(res.Substrate) == 0 {
		return fmt.Errorf("no panel to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPanelPage(pdf, proj, res)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, proj, res); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// renderPanelPage draws the panel on the current PDF page.
func renderPanelPage(pdf *fpdf.Fpdf, proj model.Project, res model.BuildResult) {
	sum := Summarize(proj, res)

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Panel: %s (%.1f x %.1f mm)", proj.Name, sum.Width, sum.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Boards: %d | Tabs: %d | V-cuts: %d | Perforated cuts: %d | Method: %s",
		sum.Boards, sum.Tabs, sum.VCuts, sum.Perforated, proj.Settings.CutMethod)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	box, _ := panelBounds(proj, res)
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	v := fitView(box, marginLeft, drawAreaTop, drawWidth, drawHeight)

	// Substrate
	pdf.SetLineWidth(0.3)
	for _, s := range res.Substrate {
		drawShape(pdf, v, s, substrateColor, rgb{R: 27, G: 94, B: 32})
	}

	// Tabs are part of the substrate; outline them so they stand out.
	pdf.SetLineWidth(0.15)
	for _, t := range res.Tabs {
		drawOutline(pdf, v, t.Exterior, tabColor, "D")
	}

	// Boards
	names := boardNames(res)
	for i, b := range proj.Boards {
		col := boardColors[i%len(boardColors)]
		for _, p := range b.Shapes() {
			drawShape(pdf, v, model.ShapeFromPolygon(p), col, rgb{R: 30, G: 30, B: 30})
		}
		bb, ok := b.BoundingBox()
		if !ok {
			continue
		}
		w, h := v.len(bb.Size().X), v.len(bb.Size().Y)
		if w > 15 && h > 8 {
			cx, cy := v.pt(bb.Center())
			pdf.SetFont("Helvetica", "", labelFontSize(w, h))
			pdf.SetTextColor(0, 0, 0)
			label := boardName(names, b)
			lw := pdf.GetStringWidth(label)
			if lw < w-2 {
				pdf.SetXY(cx-lw/2, cy-2)
				pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	// Conflicts
	pdf.SetAlpha(0.5, "Normal")
	for _, c := range res.Conflicts {
		for _, s := range c.Region {
			drawOutline(pdf, v, s.Exterior, conflictColor, "F")
		}
	}
	pdf.SetAlpha(1, "Normal")

	// V-cuts, dashed
	pdf.SetDrawColor(vcutColor.R, vcutColor.G, vcutColor.B)
	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{2, 1}, 0)
	for _, c := range res.VCuts {
		a, b := c.Ends()
		x1, y1 := v.pt(a)
		x2, y2 := v.pt(b)
		pdf.Line(x1, y1, x2, y2)
	}
	pdf.SetDashPattern([]float64{}, 0)

	// Perforations
	r := math.Max(v.len(proj.Settings.MouseBiteDiameter/2), 0.1)
	pdf.SetFillColor(biteColor.R, biteColor.G, biteColor.B)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.05)
	for _, p := range res.Perforations {
		x, y := v.pt(p.Vec())
		pdf.Circle(x, y, r, "FD")
	}

	canvasW, canvasH := v.len(box.Size().X), v.len(box.Size().Y)
	drawDimensionAnnotations(pdf, sum, v.offX, v.offY, canvasW, canvasH)
	drawBoardLegend(pdf, proj, res, v.offY+canvasH+5)
}

// drawShape fills a shape and paints its holes white.
func drawShape(pdf *fpdf.Fpdf, v view, s model.Shape, fill, stroke rgb) {
	pdf.SetDrawColor(stroke.R, stroke.G, stroke.B)
	drawOutline(pdf, v, s.Exterior, fill, "FD")
	for _, h := range s.Holes {
		drawOutline(pdf, v, h, rgb{R: 255, G: 255, B: 255}, "FD")
	}
}

func drawOutline(pdf *fpdf.Fpdf, v view, o model.Outline, fill rgb, style string) {
	if len(o) < 3 {
		return
	}
	pts := make([]fpdf.PointType, len(o))
	for i, p := range o {
		x, y := v.pt(p.Vec())
		pts[i] = fpdf.PointType{X: x, Y: y}
	}
	pdf.SetFillColor(fill.R, fill.G, fill.B)
	if style == "D" {
		pdf.SetDrawColor(fill.R, fill.G, fill.B)
	}
	pdf.Polygon(pts, style)
}

// drawDimensionAnnotations adds width and height labels outside the panel.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sum PanelSummary, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the panel)
	widthLabel := fmt.Sprintf("%.1f mm", sum.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Height annotation (to the left of the panel, rotated)
	heightLabel := fmt.Sprintf("%.1f mm", sum.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawBoardLegend renders a compact legend of the boards below the drawing.
func drawBoardLegend(pdf *fpdf.Fpdf, proj model.Project, res model.BuildResult, startY float64) {
	if len(proj.Boards) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Boards:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	names := boardNames(res)

	for i, b := range proj.Boards {
		col := boardColors[i%len(boardColors)]
		label := fmt.Sprintf("%s (%.1fx%.1f)", boardName(names, b), b.Width(), b.Height())
		if math.Mod(b.Rotation, 360) != 0 {
			label += fmt.Sprintf(" R%.0f", b.Rotation)
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the board table, the settings and the summary QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, proj model.Project, res model.BuildResult) error {
	sum := Summarize(proj, res)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Panel Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	if err := placeQRCode(pdf, "qr_panel_summary", sum,
		pageWidth-marginRight-summaryQR, marginTop+16, summaryQR); err != nil {
		return err
	}

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Panel Size", fmt.Sprintf("%.1f x %.1f mm", sum.Width, sum.Height)},
		{"Boards", fmt.Sprintf("%d", sum.Boards)},
		{"Board Area", fmt.Sprintf("%.0f mm²", boardArea(proj))},
		{"Substrate Area", fmt.Sprintf("%.0f mm²", shapeArea(res.Substrate))},
		{"Tabs", fmt.Sprintf("%d", sum.Tabs)},
		{"V-cuts", fmt.Sprintf("%d", sum.VCuts)},
		{"Perforations", fmt.Sprintf("%d holes on %d cuts", sum.Perforations, sum.Perforated)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Boards", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 45, 45, 40, 30, 40}
	headers := []string{"#", "Name", "Ident", "Position", "Rotation", "DNP"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	byID := map[string]model.Board{}
	for _, b := range proj.Boards {
		byID[b.ID] = b
	}

	pdf.SetFont("Helvetica", "", 9)
	for i, r := range res.Boards {
		if y > pageHeight-marginBottom-30 {
			break
		}
		b := byID[r.ID]
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", r.Index),
			r.Name,
			r.Ident,
			fmt.Sprintf("%.1f, %.1f", b.X, b.Y),
			fmt.Sprintf("%.0f°", b.Rotation),
			fmt.Sprintf("%d", len(r.DNP)),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(res.Errors) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Placement Problems", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, msg := range res.Errors {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, "- "+msg, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Panel Settings", "", 0, "L", false, 0, "")
	y += 9

	s := proj.Settings
	settingsItems := []struct {
		label string
		value string
	}{
		{"Spacing", fmt.Sprintf("%.2f mm", s.Spacing)},
		{"Tab Width", fmt.Sprintf("%.2f mm", s.TabWidth)},
		{"Cut Method", s.CutMethod.String()},
		{"Mouse Bites", fmt.Sprintf("%.2f mm every %.2f mm", s.MouseBiteDiameter, s.MouseBiteSpacing)},
		{"Mill Fillets", fmt.Sprintf("%.2f mm", res.MillFillets)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PanelCut - PCB Panelizer", "", 0, "C", false, 0, "")
	return nil
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// boardArea returns the total outline area of the boards.
func boardArea(proj model.Project) float64 {
	var polys []geom.Polygon
	for _, b := range proj.Boards {
		polys = append(polys, b.Shapes()...)
	}
	return geom.TotalArea(polys)
}
