package markup

import "strings"

// Split cuts text into chunks of at most maxLen runes, never mid-character. Boundary
// search per chunk, scanning backward within the window: the last newline wins (the
// newline itself is consumed as leading whitespace of the remainder), then the last
// sentence-ending period (kept in the chunk), then a hard cut at maxLen. Text that
// already fits is returned as a single chunk untouched.
func Split(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		window := runes[:maxLen]
		cut := lastIndexRune(window, '\n')
		if cut == -1 {
			if dot := lastIndexRune(window, '.'); dot != -1 {
				cut = dot + 1 // keep the period
			} else {
				cut = maxLen
			}
		}

		if cut > 0 {
			parts = append(parts, string(runes[:cut]))
		}
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " \t\n\r"))
	}

	return parts
}

func lastIndexRune(window []rune, r rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == r {
			return i
		}
	}
	return -1
}
