package chunker

import "strings"

// Windows splits text into overlapping windows of size words. Each window
// starts size-overlap words after the previous one; the window that reaches
// the end of the text is the last and may be shorter. Text that fits in one
// window is returned unchanged.
func Windows(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= size {
		return []string{text}
	}

	step := size - overlap
	var out []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

// WindowCount is the number of windows Windows yields for n words.
func WindowCount(n, size, overlap int) int {
	if n == 0 {
		return 0
	}
	if n <= size {
		return 1
	}
	step := size - overlap
	return 1 + (n-size+step-1)/step
}
