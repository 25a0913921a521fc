package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldText(t *testing.T) {
	data := InspectorData{Error: 1.234, Legal: false}

	assert.Equal(t, "1.23", fieldText(FieldDescriptor{Getter: func(d any) float32 {
		return float32(d.(InspectorData).Error)
	}}, data))
	assert.Equal(t, "", fieldText(FieldDescriptor{}, data))

	odom := inspectorSections[0].Fields[2]
	assert.Equal(t, "blocked", fieldText(odom, data))
	data.Legal, data.OdomDY, data.OdomDX = true, -7, 0.5
	assert.Equal(t, "(-7.00, +0.50)", fieldText(odom, data))
}

func TestSectionHeight(t *testing.T) {
	r := NewRenderer()
	lh := r.Theme.LineHeight

	sd := SectionDescriptor{
		Title: "Filter",
		Fields: []FieldDescriptor{
			{Widget: WidgetText},
			{Widget: WidgetBar},
			{Widget: WidgetText, Visible: func(any) bool { return false }},
		},
	}
	assert.Equal(t, 4+lh+lh+lh+2, r.SectionHeight(sd, nil))

	sd.Visible = func(any) bool { return false }
	assert.Equal(t, int32(0), r.SectionHeight(sd, nil))
}

func TestESSRatioField(t *testing.T) {
	ess := inspectorSections[1].Fields[2]
	assert.Equal(t, float32(0.25), ess.Getter(InspectorData{ESS: 25, Particles: 100}))
	assert.Equal(t, float32(0), ess.Getter(InspectorData{}))
}
