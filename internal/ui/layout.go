package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is hidden
	// and the header drops its counters.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth gives the list pane a smaller share of the width.
	LayoutExtraWideWidth = 160
)

// Grid view card sizing.
const (
	GridCardWidth  = 28
	GridCardHeight = 6
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads store snapshots.
	DefaultUIInterval = time.Second

	// RecentPigeonLimit caps the "recent" list on the lofts dashboard.
	RecentPigeonLimit = 5
)
