package ui

import "github.com/charmbracelet/lipgloss"

var (
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true).
			Render

	activeTabStyle = lipgloss.NewStyle().
			Foreground(fuchsia).
			Bold(true).
			Underline(true).
			Render

	tabStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	labelStyle = lipgloss.NewStyle().
			Foreground(gray).
			Width(8).
			Render

	resultStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			Render

	failureStyle = lipgloss.NewStyle().
			Foreground(red).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(red).
			Padding(0, 1).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarSpeechStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render
)
