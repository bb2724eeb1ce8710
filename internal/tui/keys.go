package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Tap   key.Binding
	Start key.Binding
	Stop  key.Binding
	Reset key.Binding
	Next  key.Binding
	Prev  key.Binding
	Quit  key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(displayKey(keys[0]), help))
}

func newKeyMap(tapKeys []string) keyMap {
	taps := normalizeTapKeys(tapKeys)
	return keyMap{
		Tap:   binding("tap", taps...),
		Start: binding("start", "s", "enter"),
		Stop:  binding("stop", "x"),
		Reset: binding("reset", "r"),
		Next:  binding("next score", "n"),
		Prev:  binding("prev score", "p"),
		Quit:  binding("quit", "q", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Tap, k.Stop, k.Reset, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Tap, k.Stop, k.Reset},
		{k.Next, k.Prev, k.Quit},
	}
}

// normalizeTapKeys maps config names to the strings Bubble Tea reports.
func normalizeTapKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "space" {
			k = " "
		}
		if k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = []string{" "}
	}
	return out
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
