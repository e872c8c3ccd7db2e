package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show coordinate columns.
	LayoutWideWidth = 130
)

// chromeHeight is the number of lines used by header, command bar and footer.
const chromeHeight = 3
