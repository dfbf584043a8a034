// Package metrics centralizes layout constants for the TUI.
package metrics

const (
	// HeaderLines is the title line plus its bottom margin.
	HeaderLines = 2
	// FooterLines is the status line plus the help line.
	FooterLines = 2

	ItemRightPadding  = 1
	ItemSafetyPadding = 1
)
