package urlscan

import "fmt"

// Confusable maps a non-Latin character to the Latin letter it imitates
type Confusable struct {
	Char      rune
	Lookalike string
}

// Confusables is the table of Cyrillic and mixed-script lookalikes checked
// against hostnames.
var Confusables = []Confusable{
	{'а', "a"}, {'с', "c"}, {'е', "e"}, {'о', "o"}, {'р', "p"},
	{'х', "x"}, {'у', "y"}, {'А', "A"}, {'В', "B"}, {'С', "C"},
	{'Е', "E"}, {'Н', "H"}, {'К', "K"}, {'М', "M"}, {'О', "O"},
	{'Р', "P"}, {'Т', "T"}, {'Х', "X"}, {'і', "i"}, {'ј', "j"},
	{'ё', "ë"}, {'ѕ', "s"}, {'ԁ', "d"}, {'ɡ', "g"}, {'ʜ', "h"},
}

var confusableIndex = func() map[rune]string {
	m := make(map[rune]string, len(Confusables))
	for _, c := range Confusables {
		m[c.Char] = c.Lookalike
	}
	return m
}()

// HomographFinding is one confusable character found in a hostname
type HomographFinding struct {
	Char      string `json:"char"`
	Lookalike string `json:"lookalike"`
	Codepoint string `json:"codepoint"`
}

// DetectHomographs walks hostname left to right and reports every
// confusable character, repeats included.
func DetectHomographs(hostname string) []HomographFinding {
	var found []HomographFinding
	for _, r := range hostname {
		lookalike, ok := confusableIndex[r]
		if !ok {
			continue
		}
		found = append(found, HomographFinding{
			Char:      string(r),
			Lookalike: lookalike,
			Codepoint: fmt.Sprintf("U+%04X", r),
		})
	}
	return found
}
