package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PanelCut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each board label's QR code.
type LabelInfo struct {
	Name     string   `json:"name"`
	Ident    string   `json:"ident"`
	Index    int      `json:"index"`
	Width    float64  `json:"width_mm"`
	Height   float64  `json:"height_mm"`
	X        float64  `json:"x_mm"`
	Y        float64  `json:"y_mm"`
	Rotation float64  `json:"rotation"`
	Flags    []string `json:"flags,omitempty"`
	DNP      []string `json:"dnp,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per board in the
// built panel. Labels are laid out on a standard label sheet (Avery 5160 /
// 3 columns x 10 rows on US Letter).
func ExportLabels(path string, proj model.Project, res model.BuildResult) error {
	labels := CollectLabelInfos(proj, res)
	if len(labels) == 0 {
		return fmt.Errorf("no boards to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Name, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// placeQRCode encodes payload as JSON into a QR code and draws it as a
// size by size square at x, y.
func placeQRCode(pdf *fpdf.Fpdf, name string, payload any, x, y, size float64) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal QR payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, size, size, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	if err := placeQRCode(pdf, fmt.Sprintf("qr_board_%d", info.Index), info, qrX, qrY, qrSize); err != nil {
		return err
	}

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Name, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.1f x %.1f mm", info.Width, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pos := fmt.Sprintf("%s @ (%.1f, %.1f)", info.Ident, info.X, info.Y)
	pdf.CellFormat(textW, 3, truncate(pdf, pos, textW), "", 1, "L", false, 0, "")

	if len(info.DNP) > 0 {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		dnp := "DNP: " + strings.Join(info.DNP, " ")
		pdf.CellFormat(textW, 3, truncate(pdf, dnp, textW), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits w at the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts label information for every board in the
// build, in build order.
func CollectLabelInfos(proj model.Project, res model.BuildResult) []LabelInfo {
	byID := make(map[string]model.Board, len(proj.Boards))
	for _, b := range proj.Boards {
		byID[b.ID] = b
	}

	var labels []LabelInfo
	for _, r := range res.Boards {
		b, ok := byID[r.ID]
		if !ok {
			continue
		}
		labels = append(labels, LabelInfo{
			Name:     r.Name,
			Ident:    r.Ident,
			Index:    r.Index,
			Width:    b.Width(),
			Height:   b.Height(),
			X:        b.X,
			Y:        b.Y,
			Rotation: b.Rotation,
			Flags:    b.Flags,
			DNP:      r.DNP,
		})
	}
	return labels
}
