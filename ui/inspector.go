package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// InspectorData is the filter state shown in the inspector panel.
type InspectorData struct {
	TrueRow, TrueCol int
	EstRow, EstCol   float64
	OdomDY, OdomDX   float64
	Legal            bool
	Error            float64
	Spread           float64
	ESS              float64
	Particles        int
	Degenerate       bool
	MapUpdates       int
	Scan             []float64
	MaxRange         float64
}

// inspectorSections lays out the panel; each getter receives an InspectorData.
var inspectorSections = []SectionDescriptor{
	{
		ID:    "pose",
		Title: "Pose",
		Fields: []FieldDescriptor{
			{ID: "truth", Label: "Truth", Widget: WidgetText, TextGetter: func(d any) string {
				v := d.(InspectorData)
				return fmt.Sprintf("(%d, %d)", v.TrueRow, v.TrueCol)
			}},
			{ID: "estimate", Label: "Estimate", Widget: WidgetText, TextGetter: func(d any) string {
				v := d.(InspectorData)
				return fmt.Sprintf("(%.1f, %.1f)", v.EstRow, v.EstCol)
			}},
			{ID: "odometry", Label: "Odometry", Widget: WidgetText, TextGetter: func(d any) string {
				v := d.(InspectorData)
				if !v.Legal {
					return "blocked"
				}
				return fmt.Sprintf("(%+.2f, %+.2f)", v.OdomDY, v.OdomDX)
			}},
		},
	},
	{
		ID:    "filter",
		Title: "Filter",
		Fields: []FieldDescriptor{
			{ID: "error", Label: "Error", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
				return float32(d.(InspectorData).Error)
			}},
			{ID: "spread", Label: "Spread", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
				return float32(d.(InspectorData).Spread)
			}},
			{ID: "ess", Label: "ESS ratio", Widget: WidgetBar, Getter: func(d any) float32 {
				v := d.(InspectorData)
				if v.Particles == 0 {
					return 0
				}
				return float32(v.ESS / float64(v.Particles))
			}},
			{ID: "degenerate", Label: "Weights", Widget: WidgetText, TextGetter: func(d any) string {
				if d.(InspectorData).Degenerate {
					return "degenerate"
				}
				return "ok"
			}},
		},
	},
	{
		ID:    "map",
		Title: "Map",
		Fields: []FieldDescriptor{
			{ID: "updates", Label: "Updates", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(d.(InspectorData).MapUpdates)
			}},
		},
	},
}

// Inspector renders the filter inspection panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2
	scanHeight := int32(60)

	panelHeight := padding*2 + r.Theme.LineHeight + scanHeight
	for _, sd := range inspectorSections {
		panelHeight += r.SectionHeight(sd, data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, panelHeight)

	y := ins.y + padding
	for _, sd := range inspectorSections {
		y = r.DrawSection(ins.x+padding, y, sd, data, contentWidth)
	}

	y = r.DrawSectionHeader(ins.x+padding, y, "Scan")
	ins.drawScan(ins.x+padding, y, contentWidth, scanHeight, data)

	return y + scanHeight + padding
}

// drawScan draws one bar per beam, height proportional to range.
func (ins *Inspector) drawScan(x, y, width, height int32, data InspectorData) {
	rl.DrawRectangle(x, y, width, height, rl.Color{R: 25, G: 30, B: 35, A: 255})
	n := int32(len(data.Scan))
	if n == 0 || data.MaxRange <= 0 {
		return
	}
	barW := max(width/n, 1)
	for i, d := range data.Scan {
		h := int32(float64(height) * min(d/data.MaxRange, 1))
		color := rl.Color{R: 255, G: 90, B: 90, A: 220}
		if d >= data.MaxRange {
			color = rl.Color{R: 90, G: 90, B: 90, A: 220}
		}
		rl.DrawRectangle(x+int32(i)*barW, y+height-h, max(barW-1, 1), h, color)
	}
}
