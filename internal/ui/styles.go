package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(14)

	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7B2CBF")).
			Padding(0, 1)
)
