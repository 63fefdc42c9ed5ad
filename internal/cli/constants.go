package cli

// Default values for CLI flags and output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// MaxURLWidth truncates long URLs in the fetch report table.
	MaxURLWidth = 80
	// StdoutName selects standard output for --output.
	StdoutName = "-"
)
