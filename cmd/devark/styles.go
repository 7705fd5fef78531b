package main

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).Bold(true)
	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).Underline(true)
)
