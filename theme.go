package deepseek

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values.
type Theme struct {
	UserMsg   int // User message accent
	Reasoning int // Reasoning block text
	System    int // System message accent
	Error     int // Error messages
	Success   int // Success indicators
	Muted     int // Status bar, placeholders
	Accent    int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Reasoning: 8,
		System:    3,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
