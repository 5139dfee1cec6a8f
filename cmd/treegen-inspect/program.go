// Copyright 2024 The tree-gen Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/QE-Lab/tree-gen/treemodel"
)

// model is the bubbletea model backing the interactive node-type browser:
// a flat, depth-annotated listing of the hierarchy on the left, and the
// selected node type's own fields on the right.
type model struct {
	tm *treemodel.Model

	rows     []row
	selected int

	width, height int
	err           error
}

type row struct {
	node  *treemodel.NodeType
	depth int
}

func newProgram(tm *treemodel.Model) *program {
	return &program{tm: tm}
}

// program wraps the bubbletea entry point so main need not import
// bubbletea directly.
type program struct {
	tm *treemodel.Model
}

func (p *program) run() error {
	_, err := tea.NewProgram(newModel(p.tm)).Run()
	return err
}

func newModel(tm *treemodel.Model) model {
	var rows []row
	var walk func(n *treemodel.NodeType, depth int)
	walk = func(n *treemodel.NodeType, depth int) {
		rows = append(rows, row{node: n, depth: depth})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, name := range tm.NodeOrder {
		n := tm.Nodes[name]
		if n.Parent == nil {
			walk(n, 0)
		}
	}
	return model{tm: tm, rows: rows}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v\n\npress q to quit.", m.err))
	}

	header := headerStyle.Render(fmt.Sprintf("tree-gen inspect: %s", m.tm.Namespace))
	tree := m.renderTree()
	detail := m.renderDetail()

	body := lipgloss.JoinHorizontal(lipgloss.Top, paneStyle.Render(tree), activePaneStyle.Render(detail))
	status := statusStyle.Render("↑/↓ or j/k to move · q to quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m model) renderTree() string {
	var b strings.Builder
	for i, r := range m.rows {
		pad := strings.Repeat("  ", r.depth)
		line := pad + r.node.Name
		if r.node.Abstract() {
			line = abstractStyle.Render(line)
		}
		if i == m.selected {
			line = selectedStyle.Render("> " + pad + r.node.Name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderDetail() string {
	if len(m.rows) == 0 {
		return "no node types declared"
	}
	n := m.rows[m.selected].node

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", n.Name)
	if n.Doc != "" {
		fmt.Fprintf(&b, "%s\n", n.Doc)
	}
	if n.Parent != nil {
		fmt.Fprintf(&b, "extends %s\n", n.Parent.Name)
	}
	b.WriteString("\n")
	if len(n.Fields) == 0 {
		b.WriteString(fieldKindStyle.Render("(no declared fields)\n"))
	}
	for _, f := range n.Fields {
		fmt.Fprintf(&b, "%s %s\n", f.Name, fieldKindStyle.Render(fieldKindLabel(f)))
	}
	if n.Final() {
		fmt.Fprintf(&b, "\ndiscriminator %d\n", n.Discriminator)
	}
	return b.String()
}
