package clauser

import (
	"fmt"
	"strconv"
)

// Reader is a typed pull API layered on a Tokenizer. It tracks bracket depth
// and enforces the property/value grammar; every error it returns carries a
// byte position.
type Reader struct {
	tok   *Tokenizer
	depth int
}

func NewReader(text string) *Reader {
	return &Reader{tok: NewTokenizer(text)}
}

// Position returns the current position of the underlying tokenizer.
func (r *Reader) Position() int {
	return r.tok.Position()
}

// IsRootLevel reports whether the reader is at the root level, outside any
// collection.
func (r *Reader) IsRootLevel() bool {
	return r.depth == 0
}

func (r *Reader) incrementDepth() {
	r.depth = r.depth + 1
}

func (r *Reader) decrementDepth() error {
	if r.depth <= 0 {
		return r.ParseError(DepthMismatchError, "attempted to decrement depth but already at top-level")
	}
	r.depth = r.depth - 1
	return nil
}

// ExpectToken consumes the next token, erroring unless its type matches
// expected.
func (r *Reader) ExpectToken(expected TokenType) (Token, error) {
	tok, err := r.tok.Next()
	if err != nil {
		return Token{}, err
	}
	if tok == nil {
		return Token{}, r.ParseError(UnexpectedTokenError, fmt.Sprintf("unexpected EOF, expected %s", expected))
	}
	if tok.Type != expected {
		return Token{}, r.unexpectedTokenError(*tok, expected)
	}
	return *tok, nil
}

// BeginCollection consumes the opening bracket of an object or array.
func (r *Reader) BeginCollection() error {
	if _, err := r.ExpectToken(OpenBracketToken); err != nil {
		return err
	}
	r.incrementDepth()
	return nil
}

// EndCollection consumes the closing bracket of an object or array.
func (r *Reader) EndCollection() error {
	if _, err := r.ExpectToken(CloseBracketToken); err != nil {
		return err
	}
	return r.decrementDepth()
}

// NextProperty reads the next property key and the type of its value.
// ok is false at the clean end of an object: EOF at the root level, or a
// closing bracket (which is consumed) anywhere else.
func (r *Reader) NextProperty() (key string, valueType RealType, ok bool, err error) {
	tok, err := r.tok.Next()
	if err != nil {
		return "", 0, false, err
	}
	if tok == nil {
		if r.depth == 0 {
			// EOF is a valid end for the root object
			return "", 0, false, nil
		}
		return "", 0, false, r.ParseError(UnexpectedTokenError, "unexpected EOF while reading next property")
	}

	if tok.Type == CloseBracketToken {
		if r.depth == 0 {
			return "", 0, false, r.ParseErrorForToken(*tok, UnexpectedTokenError, "unexpected CloseBracket while reading next property")
		}
		// we've reached the end of the object, we're done
		return "", 0, false, nil
	}

	if tok.Type != IdentifierToken {
		return "", 0, false, r.unexpectedTokenError(*tok, IdentifierToken)
	}

	key = r.tok.StrForToken(*tok)
	// property_name = ...
	if _, err := r.ExpectToken(EqualsToken); err != nil {
		return "", 0, false, err
	}

	valueType, found, err := r.PeekNextType()
	if err != nil {
		return "", 0, false, err
	}
	if !found {
		return "", 0, false, r.ParseError(UnexpectedTokenError, "expected value, got EOF")
	}
	return key, valueType, true, nil
}

// ReadString reads a quoted string, returning its contents as a slice of the
// input.
func (r *Reader) ReadString() (string, error) {
	tok, err := r.ExpectToken(StringToken)
	if err != nil {
		return "", err
	}
	return r.tok.StrForToken(tok), nil
}

// PeekExpectedString returns the next string without consuming it. The
// cursor is restored after a successful read; this works because the string
// token's span is deterministic from that position.
func (r *Reader) PeekExpectedString() (string, error) {
	pos := r.tok.Position()
	s, err := r.ReadString()
	if err != nil {
		return "", err
	}
	r.tok.pos = pos
	return s, nil
}

// ReadIdentifier reads an identifier, returning it as a slice of the input.
func (r *Reader) ReadIdentifier() (string, error) {
	tok, err := r.ExpectToken(IdentifierToken)
	if err != nil {
		return "", err
	}
	return r.tok.StrForToken(tok), nil
}

// ReadStringlike reads a string, identifier, or nothing. The value counts as
// empty - and nothing is consumed - when the input has ended, when a line
// break separates the cursor from the next token, or when the enclosing
// collection is about to close. This is what lets
//
//	str1 =
//	str2 = test
//
// parse as two properties.
func (r *Reader) ReadStringlike() (string, error) {
	tok, err := r.tok.Peek()
	if err != nil {
		return "", err
	}
	if tok == nil {
		// empty string
		return "", nil
	}

	// new line before the next token, also an empty string
	if r.newLineBetween(r.tok.Position(), tok.Index) {
		return "", nil
	}

	switch tok.Type {
	case IdentifierToken:
		return r.ReadIdentifier()
	case StringToken:
		return r.ReadString()
	case CloseBracketToken:
		// end of collection, it's an empty string
		if r.depth > 0 {
			return "", nil
		}
	}

	return "", r.ParseError(UnexpectedTokenError, fmt.Sprintf("expected identifier, string, or empty, got %s", tok))
}

// ReadBoolean reads a yes or no.
func (r *Reader) ReadBoolean() (bool, error) {
	tok, err := r.ExpectToken(BooleanToken)
	if err != nil {
		return false, err
	}
	return r.tok.StrForToken(tok)[0] == 'y', nil
}

// ReadInt64 reads a number as a signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	tok, err := r.ExpectToken(NumberToken)
	if err != nil {
		return 0, err
	}
	s := r.tok.StrForToken(tok)
	n, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		return 0, r.invalidNumberError(tok, s)
	}
	return n, nil
}

// ReadUint64 reads a number as an unsigned integer.
func (r *Reader) ReadUint64() (uint64, error) {
	tok, err := r.ExpectToken(NumberToken)
	if err != nil {
		return 0, err
	}
	s := r.tok.StrForToken(tok)
	n, perr := strconv.ParseUint(s, 10, 64)
	if perr != nil {
		return 0, r.invalidNumberError(tok, s)
	}
	return n, nil
}

// ReadFloat64 reads a number as a float.
func (r *Reader) ReadFloat64() (float64, error) {
	tok, err := r.ExpectToken(NumberToken)
	if err != nil {
		return 0, err
	}
	s := r.tok.StrForToken(tok)
	n, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, r.invalidNumberError(tok, s)
	}
	return n, nil
}

// ReadNumberString reads a number, returning its lexeme without parsing it.
func (r *Reader) ReadNumberString() (string, error) {
	tok, err := r.ExpectToken(NumberToken)
	if err != nil {
		return "", err
	}
	return r.tok.StrForToken(tok), nil
}

// invalidNumberError anchors a number-parse failure at the number's start.
func (r *Reader) invalidNumberError(tok Token, s string) *Error {
	return r.tok.ParseErrorAt(InvalidNumberError, tok.Index, fmt.Sprintf("failed to parse number from token '%s'", s))
}

// NextArrayValue looks at the next array element and returns its type.
// ok is false at the end of the array (a closing bracket or EOF, neither
// consumed).
func (r *Reader) NextArrayValue() (RealType, bool, error) {
	tok, err := r.tok.Peek()
	if err != nil {
		return 0, false, err
	}
	if tok == nil || tok.Type == CloseBracketToken {
		// end of the array
		return 0, false, nil
	}

	rt, ok := realTypeForToken(tok.Type)
	if !ok {
		return 0, false, r.ParseErrorForToken(*tok, UnexpectedTokenError, fmt.Sprintf("unexpected token type %s in array", tok.Type))
	}
	return rt, true, nil
}

// PeekNextType returns the type of the next value without consuming
// anything; ok is false at end of input.
func (r *Reader) PeekNextType() (RealType, bool, error) {
	tok, err := r.tok.Peek()
	if err != nil {
		return 0, false, err
	}
	if tok == nil {
		return 0, false, nil
	}

	rt, ok := realTypeForToken(tok.Type)
	if !ok {
		return 0, false, r.ParseErrorForToken(*tok, UnexpectedTokenError, fmt.Sprintf("unexpected token type %s in value", tok.Type))
	}
	return rt, true, nil
}

// PeekNextTypeExpect is PeekNextType, except end of input is an error.
func (r *Reader) PeekNextTypeExpect() (RealType, error) {
	rt, ok, err := r.PeekNextType()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, r.ParseError(UnexpectedTokenError, "expected next token, found EOF")
	}
	return rt, nil
}

// IsCollectionEnded peeks ahead to see if the current collection (array or
// object) has finished.
func (r *Reader) IsCollectionEnded() (bool, error) {
	tok, err := r.tok.Peek()
	if err != nil {
		return false, err
	}
	if tok == nil {
		if r.depth == 0 {
			return true, nil
		}
		return false, r.ParseError(UnexpectedTokenError, "expected value or close bracket, found EOF")
	}
	return tok.Type == CloseBracketToken, nil
}

// TryDiscernArrayOrMap peeks two tokens ahead to tell an object from an
// array. The first token must be an open bracket; the second decides. Empty
// collections return ok=false and the caller picks a meaning.
func (r *Reader) TryDiscernArrayOrMap() (CollectionType, bool, error) {
	maybeBraces, maybeValue, err := r.tok.PeekNextTwo()
	if err != nil {
		return 0, false, err
	}
	if maybeBraces == nil || maybeValue == nil {
		return 0, false, nil
	}

	if maybeBraces.Type != OpenBracketToken {
		return 0, false, r.ParseErrorForToken(*maybeBraces, UnexpectedTokenError, fmt.Sprintf("expected open bracket, found %s", maybeBraces.Type))
	}

	switch maybeValue.Type {
	case IdentifierToken:
		return CollectionObject, true, nil
	case CloseBracketToken:
		return 0, false, nil
	default:
		return CollectionArray, true, nil
	}
}

// IsNextValueEmpty checks if the property at the cursor might not have a
// value: the next token is the next property's key, the end of the
// collection, or EOF.
func (r *Reader) IsNextValueEmpty() (bool, error) {
	tok, err := r.tok.Peek()
	if err != nil {
		return false, err
	}
	if tok == nil {
		// EOF means empty, right?
		return true, nil
	}
	switch tok.Type {
	case IdentifierToken, CloseBracketToken:
		return true, nil
	}
	return false, nil
}

// SkipValue consumes one whole value of any shape, including nested
// collections.
func (r *Reader) SkipValue() error {
	rt, err := r.PeekNextTypeExpect()
	if err != nil {
		return err
	}
	if rt != RealObjectOrArray {
		_, err = r.tok.Next()
		return err
	}

	nested := 0
	for {
		tok, err := r.tok.Next()
		if err != nil {
			return err
		}
		if tok == nil {
			return r.ParseError(UnexpectedTokenError, "unexpected EOF while skipping value")
		}
		switch tok.Type {
		case OpenBracketToken:
			nested = nested + 1
		case CloseBracketToken:
			nested = nested - 1
			if nested == 0 {
				return nil
			}
		}
	}
}

// ParseError creates a parse error anchored at the current position.
func (r *Reader) ParseError(kind ErrorKind, message string) *Error {
	return r.tok.ParseError(kind, message)
}

// ParseErrorForToken creates a parse error anchored at the given token.
func (r *Reader) ParseErrorForToken(tok Token, kind ErrorKind, message string) *Error {
	return r.tok.ParseErrorForToken(tok, kind, message)
}

// newLineBetween checks for a line break between the byte offsets start and
// end.
func (r *Reader) newLineBetween(start, end int) bool {
	return r.tok.FindEndOfLine(start) < end
}

func (r *Reader) unexpectedTokenError(tok Token, expected TokenType) *Error {
	return r.ParseErrorForToken(tok, UnexpectedTokenError, fmt.Sprintf("unexpected token type %s, expected %s", tok.Type, expected))
}

func (r *Reader) getLineContext(position int, maxLines int) *ErrorContext {
	return r.tok.getLineContext(position, maxLines)
}
