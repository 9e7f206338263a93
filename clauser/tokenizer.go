// Package clauser parses the Clausewitz-style key/value format used by
// grand-strategy game data files and binds it into Go values. Tokenizer and
// Reader are the raw pull API over an in-memory buffer; Unmarshal and
// Decoder bind input into structs, slices, maps, and unions declared by the
// caller. Lexemes and bound strings are slices of the input text, so the
// input has to outlive whatever is bound from it.
package clauser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const commentChar = '#'

// Tokenizer lexes input text into Tokens. It is simply a cursor in the
// buffer with associated utility methods; lexemes handed out are slices of
// the original input, never copies.
type Tokenizer struct {
	text string
	pos  int
}

func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{text: text}
}

// ParseAll tokenizes the whole of text, materializing each lexeme.
func ParseAll(text string) ([]OwnedToken, error) {
	t := NewTokenizer(text)
	var tokens []OwnedToken
	it := t.Iter()
	for {
		tok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return tokens, nil
		}
		tokens = append(tokens, OwnedToken{Type: tok.Type, Index: tok.Index, Value: t.StrForToken(*tok)})
	}
}

// Position returns the current byte offset of the cursor.
func (t *Tokenizer) Position() int {
	return t.pos
}

// IsDone reports whether the tokenizer has hit the end of the input.
func (t *Tokenizer) IsDone() bool {
	return t.pos >= len(t.text)
}

// IsNextChar reports whether c is the byte immediately after the cursor.
// This checks the next byte, not the next token; whitespace and comments are
// not skipped.
func (t *Tokenizer) IsNextChar(c byte) bool {
	return t.pos+1 < len(t.text) && t.text[t.pos+1] == c
}

// Next returns the next token in the input, advancing the cursor past it.
// A nil token with a nil error means end of input.
func (t *Tokenizer) Next() (*Token, error) {
	t.skipWhitespaceAndComments()
	if t.IsDone() {
		return nil, nil
	}

	r, _ := utf8.DecodeRuneInString(t.text[t.pos:])
	switch {
	case r == '=':
		return t.newTokenIncr(EqualsToken, 1), nil
	case r == ':':
		return t.newTokenIncr(ColonToken, 1), nil
	case r == '{':
		return t.newTokenIncr(OpenBracketToken, 1), nil
	case r == '}':
		return t.newTokenIncr(CloseBracketToken, 1), nil
	case r == '>':
		if t.IsNextChar('=') {
			return t.newTokenIncr(GreaterThanEqToken, 2), nil
		}
		return t.newTokenIncr(GreaterThanToken, 1), nil
	case r == '<':
		if t.IsNextChar('=') {
			return t.newTokenIncr(LessThanEqToken, 2), nil
		}
		return t.newTokenIncr(LessThanToken, 1), nil
	case r == '?':
		// a bare ? is never valid, it has to be ?=
		if t.IsNextChar('=') {
			return t.newTokenIncr(ExistenceCheckToken, 2), nil
		}
		return nil, t.ParseError(TokenizerError, "unexpected char ?")
	case r == '-' || (r >= '0' && r <= '9'):
		return t.scanNumber()
	case r == '"':
		return t.scanString()
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return t.scanIdentifier(), nil
	}

	return nil, t.ParseError(TokenizerError, fmt.Sprintf("unexpected character %c in input", r))
}

// Peek returns the next token without moving the cursor. The restore is
// exact, including on error paths.
func (t *Tokenizer) Peek() (*Token, error) {
	pos := t.pos
	tok, err := t.Next()
	t.pos = pos
	return tok, err
}

// PeekNextTwo returns the next two tokens without moving the cursor. Either
// may be nil at end of input.
func (t *Tokenizer) PeekNextTwo() (*Token, *Token, error) {
	pos := t.pos
	first, err := t.Next()
	if err != nil {
		t.pos = pos
		return nil, nil, err
	}
	second, err := t.Next()
	t.pos = pos
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// StrForToken returns the lexeme of tok as a slice of the input text.
func (t *Tokenizer) StrForToken(tok Token) string {
	return t.text[tok.Index : tok.Index+tok.Length]
}

// StrForRange returns the input text between the byte offsets [start, end).
func (t *Tokenizer) StrForRange(start, end int) string {
	return t.text[start:end]
}

// FindEndOfLine returns the index of the end of the line position is on,
// either a line break or the last byte of the input.
func (t *Tokenizer) FindEndOfLine(position int) int {
	return lineEnd(t.text, position)
}

// ParseErrorAt creates a parse error anchored at the given byte offset.
func (t *Tokenizer) ParseErrorAt(kind ErrorKind, position int, message string) *Error {
	// clamp into the buffer so errors at EOF still point at a real byte
	position = max(min(position, len(t.text)-1), 0)
	return newError(t, kind, position, message)
}

// ParseError creates a parse error anchored at the current cursor position.
func (t *Tokenizer) ParseError(kind ErrorKind, message string) *Error {
	return t.ParseErrorAt(kind, t.pos, message)
}

// ParseErrorForToken creates a parse error anchored at the given token.
func (t *Tokenizer) ParseErrorForToken(tok Token, kind ErrorKind, message string) *Error {
	return t.ParseErrorAt(kind, tok.Index, message)
}

func (t *Tokenizer) getLineContext(position int, maxLines int) *ErrorContext {
	bounds := lineContext(t.text, position, maxLines)
	lines := make([]string, 0, len(bounds))
	for _, b := range bounds {
		lines = append(lines, t.text[b[0]:b[0]+b[1]])
	}
	line, col := positionToLineCol(t.text, position)
	return &ErrorContext{Lines: lines, Line: line, Col: col}
}

func (t *Tokenizer) skipWhitespaceAndComments() {
	for !t.IsDone() {
		r, w := utf8.DecodeRuneInString(t.text[t.pos:])
		if r == commentChar {
			// comment runs to the next line break, which stays behind as
			// plain whitespace
			end := strings.IndexByte(t.text[t.pos:], newLine)
			if end == -1 {
				t.pos = len(t.text)
			} else {
				t.pos = t.pos + end
			}
			continue
		}
		if !unicode.IsSpace(r) {
			return
		}
		t.pos = t.pos + w
	}
}

func (t *Tokenizer) newTokenIncr(tt TokenType, length int) *Token {
	tok := &Token{Type: tt, Index: t.pos, Length: length}
	t.pos = t.pos + length
	return tok
}

// scanNumber assumes the cursor is on a '-' or a digit.
func (t *Tokenizer) scanNumber() (*Token, error) {
	numDigits := 0
	if t.text[t.pos] != '-' {
		numDigits = 1
	}

	startPos := t.pos
	decimalPlace := 0
	hasDecimalPlace := false

	t.pos = t.pos + 1
	for !t.IsDone() {
		c := t.text[t.pos]
		switch {
		case c == '.':
			// 0.05.0 and -.5 are invalid numbers; .05 never gets here, a
			// leading . is rejected by Next
			if hasDecimalPlace || numDigits < 1 {
				return nil, t.ParseError(TokenizerError, "unexpected char .")
			}
			decimalPlace = t.pos
			hasDecimalPlace = true
		case c >= '0' && c <= '9':
			numDigits = numDigits + 1
		default:
			return t.finishNumber(startPos, numDigits, decimalPlace, hasDecimalPlace)
		}
		t.pos = t.pos + 1
	}

	return t.finishNumber(startPos, numDigits, decimalPlace, hasDecimalPlace)
}

func (t *Tokenizer) finishNumber(startPos, numDigits, decimalPlace int, hasDecimalPlace bool) (*Token, error) {
	// a bare - isn't allowed, and neither is 15. as a number
	if numDigits < 1 || (hasDecimalPlace && t.pos-decimalPlace < 2) {
		return nil, t.ParseErrorAt(TokenizerError, t.pos-1, "unexpected end of number")
	}
	return &Token{Type: NumberToken, Index: startPos, Length: t.pos - startPos}, nil
}

// scanString assumes the cursor is on the opening quote. The token's span is
// the string's contents, quotes excluded; line breaks inside are fine, and
// there is no escape processing.
func (t *Tokenizer) scanString() (*Token, error) {
	startPos := t.pos
	end := strings.IndexByte(t.text[t.pos+1:], '"')
	if end == -1 {
		t.pos = len(t.text)
		return nil, t.ParseError(TokenizerError, "unexpected EOF while reading string")
	}
	t.pos = t.pos + end + 2
	return &Token{Type: StringToken, Index: startPos + 1, Length: end}, nil
}

// scanIdentifier assumes the cursor is on the first character of an
// identifier-like run and consumes the maximal run. The exact lexemes yes
// and no come out as booleans.
func (t *Tokenizer) scanIdentifier() *Token {
	startPos := t.pos
	for !t.IsDone() {
		r, w := utf8.DecodeRuneInString(t.text[t.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		t.pos = t.pos + w
	}

	tok := &Token{Type: IdentifierToken, Index: startPos, Length: t.pos - startPos}
	if lexeme := t.StrForToken(*tok); lexeme == "yes" || lexeme == "no" {
		tok.Type = BooleanToken
	}
	return tok
}

// TokenIterator walks a Tokenizer until end of input. Once a token fails to
// lex the iterator is finished; the token stream past a bad token is garbage.
type TokenIterator struct {
	t        *Tokenizer
	finished bool
}

func (t *Tokenizer) Iter() *TokenIterator {
	return &TokenIterator{t: t}
}

// Next returns the next token, nil at end of input or after a previous error.
func (it *TokenIterator) Next() (*Token, error) {
	if it.finished {
		return nil, nil
	}
	tok, err := it.t.Next()
	if err != nil {
		it.finished = true
		return nil, err
	}
	return tok, nil
}
