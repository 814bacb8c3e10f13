package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// report line structure
	PrsInfo            Code = 1000
	PrsMalformedLine   Code = 1001
	PrsBrokenInvariant Code = 1002
	PrsSkippedLines    Code = 1003

	// type names
	NamInfo               Code = 2000
	NamUnbalancedBrackets Code = 2001

	// whole report
	RptInfo    Code = 3000
	RptNoTypes Code = 3001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	PrsInfo:               "Report parse information",
	PrsMalformedLine:      "Malformed type-size line",
	PrsBrokenInvariant:    "Nesting without an enclosing variant",
	PrsSkippedLines:       "Orphan inner lines skipped",
	NamInfo:               "Type name information",
	NamUnbalancedBrackets: "Unbalanced angle brackets in type name",
	RptInfo:               "Report information",
	RptNoTypes:            "No type-size lines found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PRS%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("NAM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RPT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
