package clauser

import "fmt"

type TokenType int

const (
	// Tokens should never be invalid; a zero Type means the Token was not
	// produced by a Tokenizer.
	InvalidToken TokenType = iota

	IdentifierToken
	NumberToken
	StringToken
	BooleanToken

	EqualsToken
	ColonToken
	OpenBracketToken
	CloseBracketToken

	GreaterThanToken
	LessThanToken
	GreaterThanEqToken
	LessThanEqToken
	ExistenceCheckToken

	endOfTokenTypes
)

func (tt TokenType) GoString() string {
	return tokenToDescription[tt]
}

func (tt TokenType) String() string {
	return tokenToDescription[tt]
}

func init() {
	// make sure we panic if a description isn't declared
	for tt := TokenType(1); tt != endOfTokenTypes; tt++ {
		if tokenToDescription[tt] == "" {
			panic("you have not updated tokenToDescription")
		}
	}
}

var tokenToDescription = map[TokenType]string{
	InvalidToken: "Invalid",

	IdentifierToken: "Identifier",
	NumberToken:     "Number",
	StringToken:     "String",
	BooleanToken:    "Boolean",

	EqualsToken:       "Equals",
	ColonToken:        "Colon",
	OpenBracketToken:  "OpenBracket",
	CloseBracketToken: "CloseBracket",

	GreaterThanToken:    "GreaterThan",
	LessThanToken:       "LessThan",
	GreaterThanEqToken:  "GreaterThanEq",
	LessThanEqToken:     "LessThanEq",
	ExistenceCheckToken: "ExistenceCheck",
}

// Token is a positioned span in the input text. Index and Length are byte
// offsets; for StringToken they describe the inner span, quotes excluded.
type Token struct {
	Type   TokenType
	Index  int
	Length int
}

func (t Token) String() string {
	return fmt.Sprintf("token type %s at pos %d, length %d", t.Type, t.Index, t.Length)
}

// OwnedToken is a Token whose lexeme has been copied out of the input text,
// so it stays valid independently of the Tokenizer that produced it.
type OwnedToken struct {
	Type  TokenType
	Index int
	Value string
}
