package model

import (
	"github.com/piwi3910/PanelCut/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts the point to a gonum vector.
func (p Point2D) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// PointFromVec converts a gonum vector to a point.
func PointFromVec(v r2.Vec) Point2D { return Point2D{X: v.X, Y: v.Y} }

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	b := o.Ring().Bounds()
	return PointFromVec(b.Min), PointFromVec(b.Max)
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Ring converts the outline to a geometry ring.
func (o Outline) Ring() geom.Ring {
	r := make(geom.Ring, len(o))
	for i, p := range o {
		r[i] = p.Vec()
	}
	return r
}

// OutlineFromRing converts a geometry ring to an outline.
func OutlineFromRing(r geom.Ring) Outline {
	o := make(Outline, len(r))
	for i, v := range r {
		o[i] = PointFromVec(v)
	}
	return o
}

// Shape is one board outline piece: an exterior with optional cut-outs.
type Shape struct {
	Exterior Outline   `json:"exterior"`
	Holes    []Outline `json:"holes,omitempty"`
}

// Polygon converts the shape to a geometry polygon.
func (s Shape) Polygon() geom.Polygon {
	p := geom.Polygon{Exterior: s.Exterior.Ring()}
	for _, h := range s.Holes {
		p.Holes = append(p.Holes, h.Ring())
	}
	return p
}

// ShapeFromPolygon converts a geometry polygon to a shape.
func ShapeFromPolygon(p geom.Polygon) Shape {
	s := Shape{Exterior: OutlineFromRing(p.Exterior)}
	for _, h := range p.Holes {
		s.Holes = append(s.Holes, OutlineFromRing(h))
	}
	return s
}

// ShapesFromPolygons converts a polygon set to shapes.
func ShapesFromPolygons(polys []geom.Polygon) []Shape {
	out := make([]Shape, len(polys))
	for i, p := range polys {
		out[i] = ShapeFromPolygon(p)
	}
	return out
}

// CutMethod selects how the cuts between boards and frame are treated.
type CutMethod string

const (
	CutMouseBites CutMethod = "mb"         // Perforate every cut
	CutVCutUnsafe CutMethod = "vc_unsafe"  // Score every cut, even through boards
	CutVCutOrMB   CutMethod = "vc_or_mb"   // Score when safe, perforate otherwise
	CutVCutAndMB  CutMethod = "vc_and_mb"  // Score when safe and perforate every cut
	CutVCutOrSkip CutMethod = "vc_or_skip" // Score when safe, drop the rest
)

// CutMethods lists every cut method in display order.
var CutMethods = []CutMethod{CutMouseBites, CutVCutUnsafe, CutVCutOrMB, CutVCutAndMB, CutVCutOrSkip}

func (m CutMethod) String() string {
	switch m {
	case CutMouseBites:
		return "Mouse bites"
	case CutVCutUnsafe:
		return "V-cuts (unsafe)"
	case CutVCutOrMB:
		return "V-cuts or mouse bites"
	case CutVCutAndMB:
		return "V-cuts and mouse bites"
	case CutVCutOrSkip:
		return "V-cuts or skip"
	default:
		return string(m)
	}
}

// Valid reports whether m is a known cut method.
func (m CutMethod) Valid() bool {
	for _, c := range CutMethods {
		if c == m {
			return true
		}
	}
	return false
}

// V-cut output layers.
const (
	LayerCmtsUser = "Cmts.User"
	LayerEdgeCuts = "Edge.Cuts"
	LayerUser1    = "User.1"
)

// VCutLayers lists the layers a v-cut can be drawn on.
var VCutLayers = []string{LayerCmtsUser, LayerEdgeCuts, LayerUser1}

// MinSpacing is the smallest board spacing the engine accepts.
const MinSpacing = 0.0

// FrameConfig describes the panel frame and its rails.
type FrameConfig struct {
	Enabled bool    `json:"enabled"`
	Width   float64 `json:"width"`  // mm
	Height  float64 `json:"height"` // mm
	Top     float64 `json:"top"`    // Rail thickness mm, 0 = no rail
	Bottom  float64 `json:"bottom"`
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Tight   bool    `json:"tight"` // Fill the frame and cut the boards out of it
}

// MachineSettings holds the CNC router configuration used for G-code.
type MachineSettings struct {
	ToolDiameter  float64 `json:"tool_diameter"`  // End mill diameter in mm
	DrillDiameter float64 `json:"drill_diameter"` // Drill for perforations, 0 = mouse bite diameter
	FeedRate      float64 `json:"feed_rate"`      // Cutting feed rate mm/min
	PlungeRate    float64 `json:"plunge_rate"`    // Plunge feed rate mm/min
	SpindleSpeed  int     `json:"spindle_speed"`  // RPM
	SafeZ         float64 `json:"safe_z"`         // Safe retract height mm
	CutDepth      float64 `json:"cut_depth"`      // Panel thickness mm
	PassDepth     float64 `json:"pass_depth"`     // Depth per pass mm
	UseClimb      bool    `json:"use_climb"`      // Climb vs conventional milling
	GCodeProfile  string  `json:"gcode_profile"`  // Name of the GCode profile to use
}

// PanelSettings holds the panelization parameters.
type PanelSettings struct {
	Spacing           float64   `json:"spacing"`         // Gap between boards mm
	TabWidth          float64   `json:"tab_width"`       // Width of new tabs mm
	MaxTabSpacing     float64   `json:"max_tab_spacing"` // Edge length per automatic tab mm, 0 = off
	AutoTab           bool      `json:"auto_tab"`
	TabMaxDepth       float64   `json:"tab_max_depth"`   // How far a tab may reach mm
	CutMethod         CutMethod `json:"cut_method"`
	MouseBiteDiameter float64   `json:"mb_diameter"`
	MouseBiteSpacing  float64   `json:"mb_spacing"`
	MouseBiteOffset   float64   `json:"mb_offset"`

	MergeVCuts          bool    `json:"merge_vcuts"`
	MergeVCutsThreshold float64 `json:"merge_vcuts_threshold"`
	VCutLayer           string  `json:"vc_layer"`

	MillFillets       float64 `json:"mill_fillets"` // Router radius for inside corners mm
	ExportMillFillets bool    `json:"export_mill_fillets"`

	Frame     FrameConfig `json:"frame"`
	FrameOffX float64     `json:"frame_off_x"` // Panel origin mm
	FrameOffY float64     `json:"frame_off_y"`

	NetRenamePattern string `json:"net_rename_pattern"`
	RefRenamePattern string `json:"ref_rename_pattern"`

	ExportPath string          `json:"export_path"`
	Machine    MachineSettings `json:"machine"`
}

// DefaultSettings returns the panel settings used for new projects.
func DefaultSettings() PanelSettings {
	return PanelSettings{
		Spacing:             1.6,
		TabWidth:            3.6,
		MaxTabSpacing:       50.0,
		AutoTab:             true,
		TabMaxDepth:         50.0,
		CutMethod:           CutVCutOrMB,
		MouseBiteDiameter:   0.6,
		MouseBiteSpacing:    0.9,
		MouseBiteOffset:     0,
		MergeVCuts:          true,
		MergeVCutsThreshold: 0.4,
		VCutLayer:           LayerCmtsUser,
		MillFillets:         0.5,
		ExportMillFillets:   false,
		Frame: FrameConfig{
			Enabled: true,
			Width:   100,
			Height:  100,
			Top:     5,
			Bottom:  5,
			Left:    0,
			Right:   0,
			Tight:   true,
		},
		FrameOffX:        20,
		FrameOffY:        20,
		NetRenamePattern: "B{n}-{orig}",
		RefRenamePattern: "B{n}-{orig}",
		ExportPath:       "panel.dxf",
		Machine: MachineSettings{
			ToolDiameter: 2.0,
			FeedRate:     600.0,
			PlungeRate:   200.0,
			SpindleSpeed: 24000,
			SafeZ:        5.0,
			CutDepth:     1.6,
			PassDepth:    0.8,
			UseClimb:     true,
			GCodeProfile: "Generic",
		},
	}
}

// Validate checks the parameters that block a build.
func (s PanelSettings) Validate() error {
	if err := ValidateRenamePattern(s.NetRenamePattern); err != nil {
		return err
	}
	return ValidateRenamePattern(s.RefRenamePattern)
}

// ClampedSpacing returns the spacing, never below MinSpacing.
func (s PanelSettings) ClampedSpacing() float64 {
	if s.Spacing < MinSpacing {
		return MinSpacing
	}
	return s.Spacing
}

// Project ties everything together for save/load.
type Project struct {
	Name     string        `json:"name"`
	Boards   []Board       `json:"boards"`
	Holes    []Hole        `json:"holes"`
	Settings PanelSettings `json:"settings"`
	Result   *BuildResult  `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Boards:   []Board{},
		Holes:    []Hole{},
		Settings: DefaultSettings(),
	}
}

// Attach propagates the panel origin to every board and hole. It must be
// called after loading and after the origin setting changes.
func (p *Project) Attach() {
	for i := range p.Boards {
		p.Boards[i].OffX = p.Settings.FrameOffX
		p.Boards[i].OffY = p.Settings.FrameOffY
	}
	for i := range p.Holes {
		p.Holes[i].OffX = p.Settings.FrameOffX
		p.Holes[i].OffY = p.Settings.FrameOffY
	}
}

// Clone returns a deep copy of the project without the build result.
func (p Project) Clone() Project {
	out := p
	out.Result = nil
	out.Boards = make([]Board, len(p.Boards))
	for i, b := range p.Boards {
		out.Boards[i] = b.Copy()
	}
	out.Holes = make([]Hole, len(p.Holes))
	for i, h := range p.Holes {
		out.Holes[i] = h.Copy()
	}
	return out
}
