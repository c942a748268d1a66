package main

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7AA2F7")
	colorSuccess = lipgloss.Color("#9ECE6A")
	colorError   = lipgloss.Color("#F7768E")
	colorMuted   = lipgloss.Color("#565F89")

	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)
