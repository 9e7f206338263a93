package clauser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizerSingleTokens(t *testing.T) {
	test := func(input string, expectedType TokenType, expected string) func(*testing.T) {
		return func(t *testing.T) {
			tokens, err := ParseAll(input)
			require.NoError(t, err)
			require.Len(t, tokens, 1, "only one token is expected to be parsed")
			assert.Equal(t, expectedType, tokens[0].Type)
			assert.Equal(t, expected, tokens[0].Value)
		}
	}
	testError := func(input string) func(*testing.T) {
		return func(t *testing.T) {
			_, err := ParseAll(input)
			require.Error(t, err)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, TokenizerError, perr.Kind)
		}
	}

	t.Run("", test("100", NumberToken, "100"))
	t.Run("", test("-100", NumberToken, "-100"))
	t.Run("", test("3019.29", NumberToken, "3019.29"))
	t.Run("", test("-3019.29", NumberToken, "-3019.29"))
	t.Run("", test("\t\t\t100.0\t\t\n", NumberToken, "100.0"))
	t.Run("", test("# cool comment\n\t\t\t100.0\t\t\n", NumberToken, "100.0"))
	t.Run("", testError("-"))
	t.Run("", testError(".01"))
	t.Run("", testError("0.1.2"))
	t.Run("", testError("-1."))
	t.Run("", testError("-."))
	t.Run("", testError("-.0"))

	t.Run("", test("yes", BooleanToken, "yes"))
	t.Run("", test("no", BooleanToken, "no"))
	t.Run("", test("test", IdentifierToken, "test"))
	t.Run("", test("_a_longer_test", IdentifierToken, "_a_longer_test"))
	t.Run("", test("yess", IdentifierToken, "yess"))

	t.Run("", test(`"str"`, StringToken, "str"))
	t.Run("", test("\"this is\na multi line string\"", StringToken, "this is\na multi line string"))
	t.Run("", testError(`"unclosed`))
	t.Run("", testError(`unopened"`))
	t.Run("", testError("'single quotes'"))

	t.Run("", test("=", EqualsToken, "="))
	t.Run("", test(":", ColonToken, ":"))
	t.Run("", test("{", OpenBracketToken, "{"))
	t.Run("", test("}", CloseBracketToken, "}"))
	t.Run("", test(">", GreaterThanToken, ">"))
	t.Run("", test(">=", GreaterThanEqToken, ">="))
	t.Run("", test("<", LessThanToken, "<"))
	t.Run("", test("<=", LessThanEqToken, "<="))
	t.Run("", test("?=", ExistenceCheckToken, "?="))
	t.Run("", testError("?"))
}

func TestTokenizerAdjacentStrings(t *testing.T) {
	tokens, err := ParseAll("\"str1\"\"str2\"#comment\n\"str3\"")
	require.NoError(t, err)
	assert.Equal(t, []OwnedToken{
		{Type: StringToken, Index: 1, Value: "str1"},
		{Type: StringToken, Index: 7, Value: "str2"},
		{Type: StringToken, Index: 22, Value: "str3"},
	}, tokens)
}

func TestTokenizerStream(t *testing.T) {
	tokens, err := ParseAll("{ property = \"test\" } # comment\n82.3 > 1 >= 0")
	require.NoError(t, err)

	type expected struct {
		tokenType TokenType
		value     string
	}
	var got []expected
	for _, tok := range tokens {
		got = append(got, expected{tok.Type, tok.Value})
	}
	assert.Equal(t, []expected{
		{OpenBracketToken, "{"},
		{IdentifierToken, "property"},
		{EqualsToken, "="},
		{StringToken, "test"},
		{CloseBracketToken, "}"},
		{NumberToken, "82.3"},
		{GreaterThanToken, ">"},
		{NumberToken, "1"},
		{GreaterThanEqToken, ">="},
		{NumberToken, "0"},
	}, got)
}

// every token's span must slice the input back to its own lexeme
func TestTokenizerSpansAliasInput(t *testing.T) {
	input := "a = { b = \"multi\nline\" c = -19.5 } # trailing\nd ?= yes"
	tok := NewTokenizer(input)
	it := tok.Iter()
	count := 0
	for {
		token, err := it.Next()
		require.NoError(t, err)
		if token == nil {
			break
		}
		require.LessOrEqual(t, token.Index+token.Length, len(input))
		assert.Equal(t, tok.StrForToken(*token), input[token.Index:token.Index+token.Length])
		count = count + 1
	}
	assert.Equal(t, 13, count)
}

func TestTokenizerPeekRestoresPosition(t *testing.T) {
	tok := NewTokenizer("  alpha = 1")

	peeked, err := tok.Peek()
	require.NoError(t, err)
	require.NotNil(t, peeked)
	assert.Equal(t, 0, tok.Position())

	first, second, err := tok.PeekNextTwo()
	require.NoError(t, err)
	assert.Equal(t, 0, tok.Position())
	assert.Equal(t, IdentifierToken, first.Type)
	assert.Equal(t, EqualsToken, second.Type)

	next, err := tok.Next()
	require.NoError(t, err)
	assert.Equal(t, *peeked, *next)
}

func TestTokenizerPeekRestoresPositionOnError(t *testing.T) {
	tok := NewTokenizer("  ?bad")
	pos := tok.Position()
	_, err := tok.Peek()
	require.Error(t, err)
	assert.Equal(t, pos, tok.Position())
}

func TestTokenIteratorLatchesErrors(t *testing.T) {
	it := NewTokenizer("a ? b").Iter()

	tok, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, tok)

	_, err = it.Next()
	require.Error(t, err)

	// once a token fails the iterator stays finished
	tok, err = it.Next()
	assert.NoError(t, err)
	assert.Nil(t, tok)
}

func TestTokenizerErrorPositions(t *testing.T) {
	_, err := ParseAll("value = ?")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, TokenizerError, perr.Kind)
	assert.Equal(t, 8, perr.Index)

	// the bare minus reports at the minus itself, clamped into the buffer
	_, err = ParseAll("-")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.Index)
}
