// Package preprocess turns raw analysis input into the enriched, markdown-like
// context handed to the model. Preprocessors never fail: upstream problems are
// written into the context as notes.
package preprocess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acheong08/threatlens/internal/lang"
)

// MaxCodeChars is the number of characters of source kept for analysis
const MaxCodeChars = 30000

// Code builds the analysis context for a source snippet
func Code(raw string) string {
	runes := []rune(raw)
	total := len(runes)
	truncated := total > MaxCodeChars

	code := raw
	if truncated {
		code = string(runes[:MaxCodeChars]) + "\n\n" + TruncationMarker(total)
	}

	var b strings.Builder
	b.WriteString("## Code Analysis Request\n\n")
	fmt.Fprintf(&b, "**Detected Language:** %s\n", lang.Detect(code))
	fmt.Fprintf(&b, "**Lexer Guess:** %s\n", lang.Guess(code))
	fmt.Fprintf(&b, "**Total Characters:** %d\n", total)
	if truncated {
		fmt.Fprintf(&b, "**Note:** Code was truncated from %d to %d characters.\n", total, MaxCodeChars)
	}
	b.WriteString("\n**Source Code:**\n```\n")
	b.WriteString(NumberLines(code))
	b.WriteString("\n```\n\n")
	b.WriteString("Analyze this code for malicious intent, backdoors, obfuscation, and security vulnerabilities.")
	return b.String()
}

// TruncationMarker is appended to source cut at MaxCodeChars
func TruncationMarker(originalLen int) string {
	return fmt.Sprintf("[... TRUNCATED: original code is %d characters, showing first %d ...]", originalLen, MaxCodeChars)
}

// NumberLines prefixes every line with its 1-based number, right-aligned to
// the width of the last line number.
func NumberLines(code string) string {
	lines := strings.Split(code, "\n")
	width := len(strconv.Itoa(len(lines)))

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d | %s", width, i+1, line)
	}
	return b.String()
}
