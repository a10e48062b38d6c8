// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rbac-console/internal/ui/styles"
	"github.com/jeranaias/rbac-console/internal/util"
)

type fieldSpec struct {
	label       string
	placeholder string
	value       string
	secret      bool
}

type field struct {
	label string
	input textinput.Model
}

// form is a vertical list of text inputs with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newForm(specs ...fieldSpec) *form {
	f := &form{}
	for _, s := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = s.placeholder
		in.CharLimit = 128
		in.SetValue(s.value)
		if s.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, field{label: s.label, input: in})
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	var cmd tea.Cmd
	for j := range f.fields {
		if j == f.focus {
			cmd = f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	return cmd
}

func (f *form) onLast() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// rawValue keeps surrounding spaces, for passwords.
func (f *form) rawValue(i int) string {
	return f.fields[i].input.Value()
}

func (f *form) setValue(i int, v string) {
	f.fields[i].input.SetValue(v)
}

// update moves focus on navigation keys and feeds everything else to the
// focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, formKeys.Next):
			return f.setFocus(f.focus + 1)
		case key.Matches(k, formKeys.Prev):
			return f.setFocus(f.focus - 1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view(t *styles.Theme) string {
	labelWidth := 0
	for _, fl := range f.fields {
		if w := util.StringWidth(fl.label); w > labelWidth {
			labelWidth = w
		}
	}

	var b strings.Builder
	for i, fl := range f.fields {
		label := t.Label.Render(util.PadRight(fl.label, labelWidth))
		marker := "  "
		if i == f.focus {
			marker = t.FocusedInput.Render("> ")
		}
		b.WriteString(marker + label + "  " + fl.input.View())
		if i < len(f.fields)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
