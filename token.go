package streamjson

import "fmt"

type tokenKind uint8

const (
	tkNull tokenKind = iota
	tkTrue
	tkFalse
	tkNumber
	tkString
	tkComma
	tkColon
	tkArrayOpen
	tkArrayClose
	tkObjectOpen
	tkObjectClose
)

// token is one lexical element. text aliases the scanner's scratch buffer
// and is only valid until the scanner consumes the next byte.
type token struct {
	kind tokenKind
	text []byte
	off  int
}

func punctKind(b byte) tokenKind {
	switch b {
	case '{':
		return tkObjectOpen
	case '}':
		return tkObjectClose
	case '[':
		return tkArrayOpen
	case ']':
		return tkArrayClose
	case ':':
		return tkColon
	default:
		return tkComma
	}
}

// describe renders a token for error messages.
func (t token) describe() string {
	switch t.kind {
	case tkNull:
		return "'null'"
	case tkTrue:
		return "'true'"
	case tkFalse:
		return "'false'"
	case tkNumber:
		return fmt.Sprintf("number %s", t.text)
	case tkString:
		return fmt.Sprintf("string %q", t.text)
	case tkComma:
		return "','"
	case tkColon:
		return "':'"
	case tkArrayOpen:
		return "'['"
	case tkArrayClose:
		return "']'"
	case tkObjectOpen:
		return "'{'"
	case tkObjectClose:
		return "'}'"
	default:
		return "unknown token"
	}
}
