package app

// CalculateIndex moves current by delta within a collection of length
// items, wrapping past either end. It returns -1 for an empty collection.
// Every ring-like collection (tabs, focus, command list) navigates with it.
func CalculateIndex(current, delta, length int) int {
	if length <= 0 {
		return -1
	}
	return ((current+delta)%length + length) % length
}

// clampIndex moves current by delta and stops at the ends. It is used for
// linear sequences that are not rings: prompt history, text cursors and
// output scrolling. It returns -1 for an empty collection.
func clampIndex(current, delta, length int) int {
	if length <= 0 {
		return -1
	}
	return min(max(current+delta, 0), length-1)
}
