package common

const (
	HeaderHeight  = 2
	StatusHeight  = 1
	HelpHeight    = 1
	ComposeHeight = 6
	// PostHeight is the number of lines one timeline entry takes.
	PostHeight = 2
)

// TimelineHeight is what is left of the window for the timeline.
func TimelineHeight(height int, composing bool) int {
	h := height - HeaderHeight - StatusHeight - HelpHeight
	if composing {
		h -= ComposeHeight
	}
	if h < PostHeight {
		return PostHeight
	}
	return h
}

// VisibleRange returns the half-open range of entries to draw so that the
// cursor stays on screen. Without a cursor the newest entries are shown.
func VisibleRange(total, rows, cursor int, selected bool) (int, int) {
	if rows <= 0 || total == 0 {
		return 0, 0
	}
	if total <= rows {
		return 0, total
	}
	start := total - rows
	if selected {
		start = cursor - rows/2
		if start < 0 {
			start = 0
		}
		if start > total-rows {
			start = total - rows
		}
	}
	return start, start + rows
}
