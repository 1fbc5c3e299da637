// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the view.
type Styles struct {
	Title      lipgloss.Style
	Prompt     lipgloss.Style
	Suggestion lipgloss.Style
	Selected   lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	Loading    lipgloss.Style
	ResultHead lipgloss.Style
	Cursor     lipgloss.Style
	Link       lipgloss.Style
	Price      lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles returns the default palette.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Prompt:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Suggestion: lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		Dim:        lipgloss.NewStyle().Faint(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Loading:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ResultHead: lipgloss.NewStyle().Bold(true),
		Cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Link:       lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Price:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Help:       lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
