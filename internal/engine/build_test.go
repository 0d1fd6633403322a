package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sideBySide() []model.Board {
	a := board(40, 40, 0, 0)
	a.Ident = "ctl"
	b := board(40, 40, 41.6, 0)
	b.Ident = "ctl"
	return []model.Board{a, b}
}

func TestBuild_SideBySide(t *testing.T) {
	res, err := New(defaultTestSettings()).Build(sideBySide(), nil, BuildOptions{})
	require.NoError(t, err)

	assert.Len(t, res.Tabs, 2, "one bridge each way across the shared gap")
	require.Len(t, res.Cuts, 2)
	for _, c := range res.Cuts {
		assert.Equal(t, model.AxisVertical, c.Axis())
		assert.True(t, c.Score)
		assert.False(t, c.Perforate)
	}
	assert.Empty(t, res.Perforations)
	assert.Empty(t, res.Errors)

	require.Len(t, res.VCuts, 2, "cuts 1.6mm apart stay separate")
	for _, v := range res.VCuts {
		a, b := v.Ends()
		assert.Equal(t, 20.0, a.Y)
		assert.Equal(t, 60.0, b.Y)
	}

	require.Len(t, res.Boards, 2)
	assert.Equal(t, "B1-ctl", res.Boards[0].Name)
	assert.Equal(t, "B2-ctl", res.Boards[1].Name)
}

func TestBuild_MouseBites(t *testing.T) {
	s := defaultTestSettings()
	s.CutMethod = model.CutMouseBites

	res, err := New(s).Build(sideBySide(), nil, BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.VCuts)
	// Two 3.6mm cuts at 0.9mm spacing.
	assert.Len(t, res.Perforations, 10)
}

func TestBuild_TightFrame(t *testing.T) {
	s := model.DefaultSettings()
	s.MillFillets = 0
	b := board(20, 20, 40, 40)

	res, err := New(s).Build([]model.Board{b}, nil, BuildOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Tabs, 8)
	assert.Len(t, res.Cuts, 4, "only the faces on the board become cuts")
	assert.Len(t, res.VCuts, 4)
	assert.Empty(t, res.Errors)

	bounds, ok := res.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 20, bounds.Min.X, 1e-6)
	assert.InDelta(t, 120, bounds.Max.Y, 1e-6)
}

func TestBuild_Idempotent(t *testing.T) {
	proj := model.NewProject()
	proj.Settings.Frame.Tight = true

	a := board(30, 20, 10, 10)
	a.RotateBy(90)
	b := board(40, 40, 45, 0)
	b.AddTab(65, 40, 2)
	proj.Boards = []model.Board{a, b}
	proj.Holes = []model.Hole{model.NewHole(model.Outline{{X: 60, Y: 70}, {X: 70, Y: 70}, {X: 70, Y: 80}, {X: 60, Y: 80}})}
	proj.Attach()

	first, err := BuildProject(&proj, BuildOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Tabs)
	require.NotEmpty(t, first.Cuts)

	second, err := BuildProject(&proj, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_MillFillets(t *testing.T) {
	s := defaultTestSettings()
	s.MillFillets = 0.5

	res, err := New(s).Build(sideBySide(), nil, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.MillFillets)

	res, err = New(s).Build(sideBySide(), nil, BuildOptions{Export: true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.MillFillets, "export skips fillets unless asked")
}

func TestBuild_InvalidPatternBlocks(t *testing.T) {
	s := defaultTestSettings()
	s.RefRenamePattern = "B{x}"

	_, err := New(s).Build(sideBySide(), nil, BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidPattern))
}

func TestBuild_NoBoards(t *testing.T) {
	res, err := New(model.DefaultSettings()).Build(nil, nil, BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Substrate)
	assert.Empty(t, res.Cuts)
}

func TestBuild_ConflictsDoNotBlock(t *testing.T) {
	boards := []model.Board{board(10, 10, 0, 0), board(10, 10, 9, 9)}
	res, err := New(defaultTestSettings()).Build(boards, nil, BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.HasConflicts())
	assert.Equal(t, []string{model.MsgOverlap}, res.Errors)
	assert.NotEmpty(t, res.Substrate)
}

func TestBuild_ManualTab(t *testing.T) {
	boards := sideBySide()
	// Anchor in the gap, pointing right (90°) into the next board.
	boards[0].Tabs = []model.Tab{{X: 40.8, Y: 10, Width: 3, Direction: 90}}

	res, err := New(defaultTestSettings()).Build(boards, nil, BuildOptions{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(res.Tabs), 2)
	found := false
	for _, c := range res.Cuts {
		a, _ := c.Ends()
		if a.Y > 25 && a.Y < 35 {
			found = true
		}
	}
	assert.True(t, found, "the manual tab is cut at its own position")
}

func TestBuild_SeamsWithoutSpacing(t *testing.T) {
	s := defaultTestSettings()
	s.Spacing = 0
	s.AutoTab = false
	boards := []model.Board{board(20, 20, 0, 0), board(20, 20, 20, 0)}

	res, err := New(s).Build(boards, nil, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, res.VCuts, 1)
	a, _ := res.VCuts[0].Ends()
	assert.Equal(t, 40.0, a.X)
}

func TestBuild_DNPReport(t *testing.T) {
	boards := sideBySide()
	for i := range boards {
		boards[i].SetAnnotations([]model.Annotation{
			{Ref: "R1", BuildExpr: "LITE"},
			{Ref: "R2", BuildExpr: "~LITE"},
			{Ref: "C1", BuildExpr: "LITE | ~LITE"},
		})
	}
	boards[0].Flags = []string{"LITE"}

	res, err := New(defaultTestSettings()).Build(boards, nil, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1-R2"}, res.Boards[0].DNP)
	assert.Equal(t, []string{"B2-R1"}, res.Boards[1].DNP)
}

func TestGenerateProjectHoles(t *testing.T) {
	proj := model.NewProject()
	proj.Settings.MillFillets = 0
	proj.Boards = []model.Board{board(20, 20, 40, 40)}
	proj.Attach()

	res, err := GenerateProjectHoles(&proj)
	require.NoError(t, err)
	require.NotEmpty(t, proj.Holes)
	for _, h := range proj.Holes {
		assert.Equal(t, 20.0, h.OffX)
	}
	assert.Empty(t, res.Errors)
}

func TestCompareScenarios(t *testing.T) {
	base := defaultTestSettings()
	scenarios := BuildDefaultScenarios(base)
	require.Equal(t, "Current Settings", scenarios[0].Name)
	// Current, four other methods, no merge, double spacing.
	assert.Len(t, scenarios, 7)

	results := CompareScenarios(scenarios, sideBySide(), nil)
	require.Len(t, results, len(scenarios))
	assert.Equal(t, 2, results[0].ScoreCuts)
	for _, r := range results {
		if r.Scenario.Settings.CutMethod == model.CutMouseBites {
			assert.Equal(t, 2, r.PerforatedCuts)
			assert.Equal(t, 0, r.ScoreCuts)
		}
	}
}

func TestCompareScenarios_BlockedScenario(t *testing.T) {
	bad := defaultTestSettings()
	bad.NetRenamePattern = "{"
	results := CompareScenarios([]ComparisonScenario{{Name: "bad", Settings: bad}}, sideBySide(), nil)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
