package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"node require", "const fs = require('fs');", "JavaScript/Node.js"},
		{"es import", "import x from 'y'", "JavaScript/Node.js"},
		{"python def", "def main():\n    pass", "Python"},
		{"php tag", "<?php echo 1; ?>", "PHP"},
		{"go func", "func main() {}", "Go"},
		{"java class", "public static class Foo {}", "Java"},
		{"csharp console", "Console.WriteLine(1);", "C#"},
		{"c main", "int main(void) { return 0; }", "C/C++"},
		{"html script", "<script>alert(1)</script>", "HTML/JavaScript"},
		{"shell var", "FOO=1\n$BAR=2", "Shell/Bash"},
		{"shebang", "#!/bin/sh\necho hi", "Shell/Bash"},
		{"powershell", "Get-ChildItem C:\\", "PowerShell"},
		{"nothing", "lorem ipsum dolor", Unknown},
		{"empty", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.code))
		})
	}
}

func TestDetectTieBreak(t *testing.T) {
	// Matches both the Python and the PHP signature
	code := "def handler(x):\n    pass\nnamespace App"
	require.True(t, rules[1].Pattern.MatchString(code))
	require.True(t, rules[2].Pattern.MatchString(code))

	assert.Equal(t, "Python", Detect(code))
}

func TestRulesOrder(t *testing.T) {
	expected := []string{
		"JavaScript/Node.js", "Python", "PHP", "Go", "Java",
		"C#", "C/C++", "HTML/JavaScript", "Shell/Bash", "PowerShell",
	}

	got := Rules()
	require.Len(t, got, len(expected))
	for i, r := range got {
		assert.Equal(t, expected[i], r.Label)
	}
}

func TestGuessNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Guess("package main\n\nfunc main() {}\n"))
	assert.NotEmpty(t, Guess(""))
}
