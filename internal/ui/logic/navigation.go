package logic

// Navigator handles navigation and viewport management
type Navigator struct {
	selectedIndex  int
	viewportOffset int
	viewportHeight int
	totalItems     int
}

// NewNavigator creates a new navigator
func NewNavigator() *Navigator {
	return &Navigator{}
}

// UpdateState updates the navigator's state
func (n *Navigator) UpdateState(selectedIndex, viewportOffset, viewportHeight, totalItems int) {
	n.selectedIndex = selectedIndex
	n.viewportOffset = viewportOffset
	n.viewportHeight = viewportHeight
	n.totalItems = totalItems
}

// GetSelectedIndex returns the current selected index
func (n *Navigator) GetSelectedIndex() int {
	return n.selectedIndex
}

// GetViewportOffset returns the current viewport offset
func (n *Navigator) GetViewportOffset() int {
	return n.viewportOffset
}

// GetMaxIndex returns the maximum selectable index, -1 when empty
func (n *Navigator) GetMaxIndex() int {
	return n.totalItems - 1
}

// SetSelectedIndex clamps index to the list, scrolls it into view and
// returns the new selection and viewport offset.
func (n *Navigator) SetSelectedIndex(index int) (int, int) {
	n.selectedIndex = max(min(index, n.GetMaxIndex()), 0)
	n.ensureSelectedVisible()
	return n.selectedIndex, n.viewportOffset
}

// Move applies a navigation direction and returns the new selection and
// viewport offset.
func (n *Navigator) Move(direction string) (int, int) {
	page := max(n.viewportHeight-2, 1)
	switch direction {
	case "up":
		return n.SetSelectedIndex(n.selectedIndex - 1)
	case "down":
		return n.SetSelectedIndex(n.selectedIndex + 1)
	case "pageup":
		return n.SetSelectedIndex(n.selectedIndex - page)
	case "pagedown":
		return n.SetSelectedIndex(n.selectedIndex + page)
	case "home":
		return n.SetSelectedIndex(0)
	case "end":
		return n.SetSelectedIndex(n.GetMaxIndex())
	}
	return n.selectedIndex, n.viewportOffset
}

// ensureSelectedVisible adjusts the viewport to keep the selected item visible
func (n *Navigator) ensureSelectedVisible() {
	totalItems := n.totalItems

	if n.selectedIndex < n.viewportOffset {
		n.viewportOffset = n.selectedIndex
	}

	// Scroll indicators take a line each
	needsTopIndicator := n.viewportOffset > 0
	needsBottomIndicator := n.viewportOffset+n.viewportHeight < totalItems
	if !needsBottomIndicator && needsTopIndicator {
		remainingItems := totalItems - n.viewportOffset
		if remainingItems > n.viewportHeight-1 {
			needsBottomIndicator = true
		}
	}

	effectiveHeight := n.viewportHeight
	if needsTopIndicator {
		effectiveHeight--
	}
	if needsBottomIndicator {
		effectiveHeight--
	}
	effectiveHeight = max(effectiveHeight, 1)

	if n.selectedIndex >= n.viewportOffset+effectiveHeight {
		newOffset := n.selectedIndex - effectiveHeight + 1
		maxPossibleOffset := max(totalItems-effectiveHeight, 0)
		newOffset = max(min(newOffset, maxPossibleOffset), 0)
		n.viewportOffset = newOffset
	}

	maxOffset := max(totalItems-effectiveHeight, 0)
	n.viewportOffset = max(min(n.viewportOffset, maxOffset), 0)
}
