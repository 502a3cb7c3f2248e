/*
 * Copyright (c) 2021-Present, OneLogin, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package prompter

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var labelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("39"))

// textField a one line bubbletea prompt, optionally masked for secrets
type textField struct {
	label     string
	input     textinput.Model
	quitting  bool
	cancelled bool
}

func newTextField(label string, masked bool) textField {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return textField{label: label, input: ti}
}

// Init implements tea.Model
func (m textField) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m textField) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m textField) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("? " + m.label))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	return b.String()
}

// askField runs the prompt on the terminal. The prompt renders on stderr so
// stdout stays clean for credential output formats.
func askField(label string, masked bool) (string, error) {
	p := tea.NewProgram(newTextField(label, masked), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running prompt: %w", err)
	}

	result := finalModel.(textField)
	if result.cancelled {
		return "", fmt.Errorf("prompt cancelled")
	}

	value := strings.TrimSpace(result.input.Value())
	if value == "" {
		return "", fmt.Errorf("no value entered")
	}
	return value, nil
}
