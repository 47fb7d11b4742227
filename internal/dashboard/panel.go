package dashboard

// PanelSelection records which of a view's two stacked side panels is
// expanded. At most one panel is expanded at a time; the other collapses to
// its header.
type PanelSelection int

const (
	PanelNone PanelSelection = iota
	PanelTop
	PanelBottom
)

func (p PanelSelection) String() string {
	switch p {
	case PanelTop:
		return "top"
	case PanelBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Expand selects target.
func (p PanelSelection) Expand(target PanelSelection) PanelSelection {
	return target
}

// Toggle expands target, or collapses it if it is already expanded.
func (p PanelSelection) Toggle(target PanelSelection) PanelSelection {
	if p == target {
		return PanelNone
	}
	return target
}

// Collapse returns the neutral selection.
func (p PanelSelection) Collapse() PanelSelection {
	return PanelNone
}

// Expanded reports whether target is the expanded panel.
func (p PanelSelection) Expanded(target PanelSelection) bool {
	return target != PanelNone && p == target
}

// Collapsed reports whether target is shrunk because the other panel is
// expanded.
func (p PanelSelection) Collapsed(target PanelSelection) bool {
	return p != PanelNone && target != PanelNone && p != target
}

// Heights splits total rows between the top and bottom panel. A collapsed
// panel keeps headerRows; with nothing expanded the space is shared evenly.
func (p PanelSelection) Heights(total, headerRows int) (top, bottom int) {
	if total < 0 {
		total = 0
	}
	if headerRows > total {
		headerRows = total
	}
	switch p {
	case PanelTop:
		return total - headerRows, headerRows
	case PanelBottom:
		return headerRows, total - headerRows
	default:
		top = total / 2
		return top, total - top
	}
}
