package clauser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type ErrorKind int

const (
	// TokenizerError means the input text could not be tokenized.
	TokenizerError ErrorKind = iota + 1
	// DepthMismatchError means an operation didn't match the reader's bracket
	// depth - for example, ending a collection at the top level.
	DepthMismatchError
	// UnexpectedTokenError means the reader expected a token of one type but
	// found another.
	UnexpectedTokenError
	// InvalidNumberError means a number token could not be parsed into the
	// requested numeric type.
	InvalidNumberError
	// UnknownKeyError means an unknown key was encountered while reading an
	// object.
	UnknownKeyError
	// TypeMismatchError means the input contains a different type than what
	// was expected.
	TypeMismatchError
	// Unsupported marks an operation the parser doesn't support.
	Unsupported
	// InvalidState means the parser got into a state it shouldn't be in.
	InvalidState
	// Unknown is an error with no more specific classification.
	Unknown
	// InvalidType means an invalid type was encountered while binding.
	InvalidType
	// InvalidLength means a collection of invalid length was encountered
	// while binding.
	InvalidLength
	// InvalidValue means some invalid value was encountered while binding.
	InvalidValue
	// UnknownVariant means a union value carried an unrecognized variant name.
	UnknownVariant
	// UnknownField means a record contained a field name the schema doesn't
	// declare.
	UnknownField
	// MissingField means a required field was absent from the input.
	MissingField
	// DuplicateField means the same field appeared more than once.
	DuplicateField

	endOfErrorKinds
)

func (k ErrorKind) String() string {
	return kindToDescription[k]
}

func init() {
	for k := ErrorKind(1); k != endOfErrorKinds; k++ {
		if kindToDescription[k] == "" {
			panic("you have not updated kindToDescription")
		}
	}
}

var kindToDescription = map[ErrorKind]string{
	TokenizerError:       "TokenizerError",
	DepthMismatchError:   "DepthMismatchError",
	UnexpectedTokenError: "UnexpectedTokenError",
	InvalidNumberError:   "InvalidNumberError",
	UnknownKeyError:      "UnknownKeyError",
	TypeMismatchError:    "TypeMismatchError",
	Unsupported:          "Unsupported",
	InvalidState:         "InvalidState",
	Unknown:              "Unknown",
	InvalidType:          "InvalidType",
	InvalidLength:        "InvalidLength",
	InvalidValue:         "InvalidValue",
	UnknownVariant:       "UnknownVariant",
	UnknownField:         "UnknownField",
	MissingField:         "MissingField",
	DuplicateField:       "DuplicateField",
}

const errorContextMaxLines = 5

// ErrorContext is the source excerpt attached to an anchored Error: the lines
// leading up to and including the line the error is on, plus the position as
// a 1-based (line, column) pair.
type ErrorContext struct {
	Lines []string
	Line  int
	Col   int
}

// contextProvider is anything that can produce an ErrorContext for a byte
// position; both Tokenizer and Reader qualify.
type contextProvider interface {
	getLineContext(position int, maxLines int) *ErrorContext
}

// Error is a structured parse error. Index is a byte offset into the input,
// or -1 when the error is unanchored.
type Error struct {
	Kind    ErrorKind
	Index   int
	Message string
	Context *ErrorContext
}

func newError(p contextProvider, kind ErrorKind, position int, message string) *Error {
	e := &Error{Kind: kind, Index: position, Message: message}
	if p != nil {
		e.Context = p.getLineContext(position, errorContextMaxLines)
	}
	return e
}

// NewError creates an unanchored Error. Callers that know a position should
// prefer the constructors on Tokenizer and Reader.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Index: -1, Message: message}
}

func joinList(list []string) string {
	return strings.Join(list, ", ")
}

// NewUnknownVariantError reports a union variant name not present in the
// declared variant list.
func NewUnknownVariantError(variant string, expected []string) *Error {
	if len(expected) == 0 {
		return NewError(UnknownVariant, fmt.Sprintf("unknown variant %s, there are no variants", variant))
	}
	return NewError(UnknownVariant, fmt.Sprintf("unknown variant %s, expected one of %s", variant, joinList(expected)))
}

// NewUnknownFieldError reports a record key not present in the declared field
// list.
func NewUnknownFieldError(field string, expected []string) *Error {
	if len(expected) == 0 {
		return NewError(UnknownField, fmt.Sprintf("unknown field %s, there are no fields", field))
	}
	return NewError(UnknownField, fmt.Sprintf("unknown field %s, expected one of %s", field, joinList(expected)))
}

// NewMissingFieldError reports a required field absent from the input.
func NewMissingFieldError(field string) *Error {
	return NewError(MissingField, fmt.Sprintf("missing field %s in input", field))
}

// NewDuplicateFieldError reports a field that appeared more than once.
func NewDuplicateFieldError(field string) *Error {
	return NewError(DuplicateField, fmt.Sprintf("duplicate field %s in input", field))
}

// decorate anchors a context-less error and attaches source context from p.
// An error that already carries a position keeps it; only the missing pieces
// are filled in.
func (e *Error) decorate(p contextProvider, position int) *Error {
	if e.Index < 0 {
		e.Index = position
	}
	if e.Context == nil {
		e.Context = p.getLineContext(e.Index, errorContextMaxLines)
	}
	return e
}

func (e *Error) Error() string {
	pos := "unknown"
	if e.Index >= 0 {
		pos = strconv.Itoa(e.Index)
	}
	return fmt.Sprintf("clauser parse error at position %s: %s", pos, e.Message)
}

// Format renders the short form for %v/%s and the multi-line excerpt form
// (Detail) for %+v.
func (e *Error) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		io.WriteString(f, e.Detail())
		return
	}
	io.WriteString(f, e.Error())
}

// Detail renders the error with its source excerpt:
//
//	3. str_val = "hello
//	4. 	broken = }
//	   	....^
//	UnexpectedTokenError encountered at line 4 column 6: ...
//
// Tabs before the caret are copied through so terminal tab widths still line
// the caret up with the offending column.
func (e *Error) Detail() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s encountered at an unknown position: %s", e.Kind, e.Message)
	}

	if e.Context == nil || len(e.Context.Lines) == 0 {
		return fmt.Sprintf("%s encountered at index %d: %s", e.Kind, e.Index, e.Message)
	}

	line, col := e.Context.Line, e.Context.Col
	width := len(strconv.Itoa(line))

	var b strings.Builder
	b.WriteByte('\n')

	current := max(line-len(e.Context.Lines)+1, 0)
	for _, l := range e.Context.Lines {
		fmt.Fprintf(&b, "%-*d. %s\n", width, current, strings.TrimRightFunc(l, unicode.IsSpace))
		current = current + 1
	}

	// we don't know the tab width of the terminal so best we can do is shove
	// all of them at the start
	last := e.Context.Lines[len(e.Context.Lines)-1]
	tabs := countTabsBefore(last, col)
	dots := max(col-1-tabs, 0)

	b.WriteString(strings.Repeat(" ", width+2))
	b.WriteString(strings.Repeat("\t", tabs))
	b.WriteString(strings.Repeat(".", dots))
	b.WriteString("^\n")

	fmt.Fprintf(&b, "%s encountered at line %d column %d: %s", e.Kind, line, col, e.Message)
	return b.String()
}

// AsMap returns the stable map form of the error: error_type and message
// always, index when anchored, context and location when an excerpt was
// captured.
func (e *Error) AsMap() map[string]any {
	m := map[string]any{
		"error_type": e.Kind.String(),
		"message":    e.Message,
	}
	if e.Index >= 0 {
		m["index"] = e.Index
	}
	if e.Context != nil {
		m["context"] = e.Context.Lines
		m["location"] = [2]int{e.Context.Line, e.Context.Col}
	}
	return m
}

// MarshalYAML implements yaml.Marshaler using the AsMap form.
func (e *Error) MarshalYAML() (any, error) {
	return e.AsMap(), nil
}
