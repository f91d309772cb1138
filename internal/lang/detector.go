// Package lang classifies source snippets by regex signature.
package lang

import (
	"regexp"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Unknown is returned when no rule matches
const Unknown = "Unknown"

// Rule pairs a signature with the label it implies
type Rule struct {
	Pattern *regexp.Regexp
	Label   string
}

// Signatures overlap (a PHP function header looks like half the languages
// here), so the order of this list is the tie-break.
var rules = []Rule{
	{regexp.MustCompile(`\bimport\s+.*\s+from\s+['"]|require\s*\(|module\.exports|const\s+\w+\s*=\s*require`), "JavaScript/Node.js"},
	{regexp.MustCompile(`\bdef\s+\w+\s*\(|import\s+\w+|from\s+\w+\s+import|print\s*\(`), "Python"},
	{regexp.MustCompile(`<\?php|namespace\s+\w+|function\s+\w+\s*\(.*\)\s*\{`), "PHP"},
	{regexp.MustCompile(`\bpackage\s+\w+|func\s+\w+\s*\(|import\s+"`), "Go"},
	{regexp.MustCompile(`\bpublic\s+(static\s+)?class\s+|System\.out\.print`), "Java"},
	{regexp.MustCompile(`\busing\s+System|namespace\s+\w+\s*\{|Console\.Write`), "C#"},
	{regexp.MustCompile(`\b#include\s*<|int\s+main\s*\(|printf\s*\(|std::`), "C/C++"},
	{regexp.MustCompile(`<script|</div>|document\.getElementById|addEventListener`), "HTML/JavaScript"},
	{regexp.MustCompile(`\$\w+\s*=|#!`), "Shell/Bash"},
	{regexp.MustCompile(`powershell|Get-ChildItem|Set-ExecutionPolicy|Invoke-WebRequest`), "PowerShell"},
}

// Rules returns a copy of the ordered rule table
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Detect returns the label of the first matching rule, or Unknown
func Detect(code string) string {
	for _, r := range rules {
		if r.Pattern.MatchString(code) {
			return r.Label
		}
	}
	return Unknown
}

// Guess asks chroma's lexer analysers for a second opinion. It is only a
// hint for the model and never overrides Detect.
func Guess(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return "n/a"
	}
	return lexer.Config().Name
}
