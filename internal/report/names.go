package report

// NameToken is a fragment of a type name and the angle-bracket level it sits
// at. Separators ("::", "<", ">", "->") are tokens of their own.
type NameToken struct {
	Text  string
	Level int
}

// NameSplit is the tokenization of one name.
type NameSplit struct {
	Tokens []NameToken
	// Balanced is false once the level went below zero, i.e. a ">" closed
	// nothing. Tokens after that point carry negative levels.
	Balanced bool
	// Level is the bracket level after the last token; non-zero means the
	// name left brackets open or closed too many.
	Level int
}

// SplitName tokenizes name left to right. "<" is tagged with the level before
// it opens; ">" with the level before it closes.
func SplitName(name string) NameSplit {
	out := NameSplit{Balanced: true}
	level, i := 0, 0
	for _, loc := range nameSepPattern.FindAllStringIndex(name, -1) {
		start, end := loc[0], loc[1]
		if start > i {
			out.Tokens = append(out.Tokens, NameToken{Text: name[i:start], Level: level})
		}
		sep := name[start:end]
		out.Tokens = append(out.Tokens, NameToken{Text: sep, Level: level})
		switch sep {
		case "<":
			level++
		case ">":
			level--
			if level < 0 {
				out.Balanced = false
			}
		}
		i = end
	}
	if i < len(name) {
		out.Tokens = append(out.Tokens, NameToken{Text: name[i:], Level: level})
	}
	out.Level = level
	return out
}

// OpenBrackets returns how many "<" tokens outnumber ">" tokens. "->" is not
// a closing bracket.
func (s NameSplit) OpenBrackets() int {
	open := 0
	for _, t := range s.Tokens {
		switch t.Text {
		case "<":
			open++
		case ">":
			open--
		}
	}
	return open
}
