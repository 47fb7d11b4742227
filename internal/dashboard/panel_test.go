package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanelSelectionToggle(t *testing.T) {
	p := PanelNone
	p = p.Toggle(PanelTop)
	assert.True(t, p.Expanded(PanelTop))
	assert.True(t, p.Collapsed(PanelBottom))

	p = p.Toggle(PanelBottom)
	assert.True(t, p.Expanded(PanelBottom))
	assert.False(t, p.Expanded(PanelTop))

	p = p.Toggle(PanelBottom)
	assert.Equal(t, PanelNone, p)
	assert.False(t, p.Collapsed(PanelTop))
	assert.False(t, p.Collapsed(PanelBottom))
}

func TestPanelSelectionNeverTwoExpanded(t *testing.T) {
	ops := []func(PanelSelection) PanelSelection{
		func(p PanelSelection) PanelSelection { return p.Expand(PanelTop) },
		func(p PanelSelection) PanelSelection { return p.Expand(PanelBottom) },
		func(p PanelSelection) PanelSelection { return p.Toggle(PanelTop) },
		func(p PanelSelection) PanelSelection { return p.Toggle(PanelBottom) },
		func(p PanelSelection) PanelSelection { return p.Collapse() },
	}
	p := PanelNone
	for i := 0; i < 50; i++ {
		p = ops[(i*7)%len(ops)](p)
		assert.False(t, p.Expanded(PanelTop) && p.Expanded(PanelBottom))
	}
}

func TestPanelHeights(t *testing.T) {
	top, bottom := PanelNone.Heights(21, 2)
	assert.Equal(t, 10, top)
	assert.Equal(t, 11, bottom)

	top, bottom = PanelTop.Heights(20, 2)
	assert.Equal(t, 18, top)
	assert.Equal(t, 2, bottom)

	top, bottom = PanelBottom.Heights(1, 2)
	assert.Equal(t, 1, top)
	assert.Equal(t, 0, bottom)
}
