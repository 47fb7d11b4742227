package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	SwitchView key.Binding
	Up         key.Binding
	Down       key.Binding
	Pin        key.Binding
	Unpin      key.Binding
	Filter     key.Binding
	Search     key.Binding
	Sort       key.Binding
	Order      key.Binding
	Reset      key.Binding
	Refresh    key.Binding
	Timeframe  key.Binding
	ExpandTop  key.Binding
	ExpandBot  key.Binding
	Collapse   key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "view")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up", "select")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("dn", "select")),
	Pin:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
	Unpin:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unpin")),
	Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Order:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
	Reset:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Timeframe:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timeframe")),
	ExpandTop:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "top panel")),
	ExpandBot:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "bottom panel")),
	Collapse:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "panels")),
}

// Modal keys.
var (
	keyConfirm = key.NewBinding(key.WithKeys("y", "Y"))
	keyDecline = key.NewBinding(key.WithKeys("n", "N", "esc"))
	keyAccept  = key.NewBinding(key.WithKeys("enter"))
	keyCancel  = key.NewBinding(key.WithKeys("esc"))
	keyNext    = key.NewBinding(key.WithKeys("tab", "down"))
	keyPrev    = key.NewBinding(key.WithKeys("shift+tab", "up"))
)

func footerHelp(bs ...key.Binding) string {
	out := ""
	for i, b := range bs {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
