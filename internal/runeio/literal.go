package runeio

import (
	"errors"
	"strconv"
	"strings"
)

// controlNames are the classic ASCII control mnemonics, by code point.
var controlNames = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ControlWords maps "<NAME>" mnemonics (either case) and caret forms like ^[
// to their control runes; space and delete are included as <SP> and <DEL>.
var ControlWords map[string]rune

func init() {
	ControlWords = make(map[string]rune, 3*len(controlNames)+5)
	add := func(name string, r rune) {
		ControlWords["<"+strings.ToUpper(name)+">"] = r
		ControlWords["<"+strings.ToLower(name)+">"] = r
		if caret := CaretForm(r); caret != "" {
			ControlWords[caret] = r
		}
	}
	for r, name := range controlNames {
		add(name, rune(r))
	}
	add("SP", 0x20)
	add("DEL", 0x7f)
}

// CaretForm computes the ^-escaped printable form of an ASCII control rune,
// or returns the empty string for any other rune.
func CaretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	}
	return ""
}

var errInvalidRune = errors.New(`rune literal must be 'X', '\X', "^X" or "<NAME>"`)

// UnquoteRune parses a single-quoted character literal, with the usual Go
// escapes, or one of the ControlWords mnemonics.
func UnquoteRune(lit string) (rune, error) {
	if r, defined := ControlWords[lit]; defined {
		return r, nil
	}
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return 0, errInvalidRune
	}
	r, _, tail, err := strconv.UnquoteChar(lit[1:len(lit)-1], '\'')
	if err != nil {
		return 0, err
	}
	if tail != "" {
		return 0, errInvalidRune
	}
	return r, nil
}
