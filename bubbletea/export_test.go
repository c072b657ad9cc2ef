package bubbletea

// FitStatus exports fitStatus for testing.
func FitStatus(left, right string, width int) (string, string, string) {
	return fitStatus(left, right, width)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Blocks exposes the rendered blocks for testing.
func Blocks(m Model) []MessageBlock {
	return m.blocks
}
