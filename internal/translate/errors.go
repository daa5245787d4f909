package translate

import (
	"errors"
	"fmt"

	"github.com/jcorbin/opstack/internal/token"
)

// ErrUnexpectedEnd is matched by any UnexpectedEndError.
var ErrUnexpectedEnd = errors.New("unexpected end of input")

// SyntaxError reports a token found where something else was required.
type SyntaxError struct {
	Tok  token.Token
	Want string
}

func (se *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %v: expected %v, found %v", se.Tok.Pos(), se.Want, se.Tok)
}

// UnexpectedEndError reports running out of tokens inside an open construct.
type UnexpectedEndError struct {
	Construct string
}

func (ue *UnexpectedEndError) Error() string {
	return fmt.Sprintf("%v in %v", ErrUnexpectedEnd, ue.Construct)
}

// Unwrap returns ErrUnexpectedEnd.
func (ue *UnexpectedEndError) Unwrap() error { return ErrUnexpectedEnd }

// InternalError reports a translator that stopped making progress.
type InternalError struct {
	Pos       int
	Construct string
}

func (ie *InternalError) Error() string {
	return fmt.Sprintf("internal translator error: no progress in %v at token %v", ie.Construct, ie.Pos)
}
