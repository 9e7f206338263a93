package clauser

// RealType is the value-level kind a token can head. These are the only types
// actually differentiable purely from tokens; an open bracket could start
// either an object or an array.
type RealType int

const (
	RealBoolean RealType = iota + 1
	RealNumber
	RealString
	RealIdentifier
	RealObjectOrArray
)

func (rt RealType) String() string {
	switch rt {
	case RealBoolean:
		return "Boolean"
	case RealNumber:
		return "Number"
	case RealString:
		return "String"
	case RealIdentifier:
		return "Identifier"
	case RealObjectOrArray:
		return "ObjectOrArray"
	}
	return "Invalid"
}

// realTypeForToken projects a token type onto a RealType. Token types that
// can't head a value (operators, brackets other than '{') don't project.
func realTypeForToken(tt TokenType) (RealType, bool) {
	switch tt {
	case BooleanToken:
		return RealBoolean, true
	case NumberToken:
		return RealNumber, true
	case IdentifierToken:
		return RealIdentifier, true
	case StringToken:
		return RealString, true
	case OpenBracketToken:
		return RealObjectOrArray, true
	}
	return 0, false
}

// CollectionType distinguishes the two bracketed collection shapes. The
// distinction is made lazily, by looking at the first token inside the
// brackets.
type CollectionType int

const (
	// CollectionObject is a key-value map.
	CollectionObject CollectionType = iota + 1
	// CollectionArray is a sequence of values.
	CollectionArray
)

func (ct CollectionType) String() string {
	switch ct {
	case CollectionObject:
		return "Object"
	case CollectionArray:
		return "Array"
	}
	return "Invalid"
}
