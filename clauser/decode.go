package clauser

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshaler lets a type bind itself from the decoder instead of going
// through reflection. Code emitted by the gen package implements this.
type Unmarshaler interface {
	UnmarshalClauser(d *Decoder) error
}

// Tuple marks a struct whose fields bind positionally from a bracketed
// sequence instead of by key. Embed it:
//
//	type Point struct {
//		clauser.Tuple
//		X, Y int64
//	}
type Tuple struct{}

var (
	tupleType       = reflect.TypeOf(Tuple{})
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	unionType       = reflect.TypeOf((*Union)(nil)).Elem()
)

// Decoder binds input text into Go values by walking a Reader, driven by the
// destination type. A Decoder is good for one top-level parse.
type Decoder struct {
	r                 *Reader
	startedBaseStruct bool
}

func NewDecoder(text string) *Decoder {
	return &Decoder{r: NewReader(text)}
}

// Reader exposes the underlying reader, for Unmarshaler implementations that
// need to drive it directly.
func (d *Decoder) Reader() *Reader {
	return d.r
}

// Unmarshal binds text into v, which must be a non-nil pointer. String
// fields bind to slices of text itself, so the input must stay reachable for
// as long as the bound value does.
func Unmarshal(text string, v any) error {
	return NewDecoder(text).Decode(v)
}

// Decode binds the input into v. Any error that comes back without a source
// excerpt is decorated with one here, at the outer boundary.
func (d *Decoder) Decode(v any) error {
	if err := d.DecodeValue(v); err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			return perr.decorate(d.r, d.r.Position())
		}
		return err
	}
	return nil
}

// DecodeValue binds the next value in the input into v, without the
// boundary decoration Decode applies. Nested binds (generated code, custom
// Unmarshalers) go through this.
func (d *Decoder) DecodeValue(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return NewError(InvalidState, "destination must be a non-nil pointer")
	}
	return d.decodeValue(rv.Elem())
}

func (d *Decoder) decodeValue(v reflect.Value) error {
	if v.Kind() != reflect.Pointer && v.CanAddr() {
		pt := v.Addr().Type()
		if pt.Implements(unmarshalerType) {
			return v.Addr().Interface().(Unmarshaler).UnmarshalClauser(d)
		}
		if pt.Implements(unionType) {
			return d.decodeUnion(v.Addr().Interface().(Union))
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := d.r.ReadBoolean()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := d.r.ReadInt64()
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return NewError(InvalidValue, fmt.Sprintf("number %d overflows %s", n, v.Type()))
		}
		v.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := d.r.ReadUint64()
		if err != nil {
			return err
		}
		if v.OverflowUint(n) {
			return NewError(InvalidValue, fmt.Sprintf("number %d overflows %s", n, v.Type()))
		}
		v.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		n, err := d.r.ReadFloat64()
		if err != nil {
			return err
		}
		v.SetFloat(n)
		return nil

	case reflect.String:
		s, err := d.r.ReadStringlike()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil

	case reflect.Pointer:
		// pointers are options: an absent value stays nil
		empty, err := d.r.IsNextValueEmpty()
		if err != nil {
			return err
		}
		if empty {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return d.decodeValue(v.Elem())

	case reflect.Slice:
		return d.decodeSlice(v)

	case reflect.Array:
		return d.decodeArray(v)

	case reflect.Struct:
		if isTupleStruct(v.Type()) {
			return d.decodeTupleStruct(v)
		}
		if v.NumField() == 0 {
			return d.decodeUnit()
		}
		return d.decodeStruct(v, "")

	case reflect.Map:
		return d.decodeMapValue(v)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			return d.decodeAny(v)
		}
	}

	return NewError(Unsupported, fmt.Sprintf("cannot bind into %s", v.Type()))
}

// decodeUnit binds the empty value; anything else present is an error.
func (d *Decoder) decodeUnit() error {
	empty, err := d.r.IsNextValueEmpty()
	if err != nil {
		return err
	}
	if !empty {
		return d.r.ParseError(InvalidType, "expected unit, found value")
	}
	return nil
}

func (d *Decoder) decodeSlice(v reflect.Value) error {
	if err := d.r.BeginCollection(); err != nil {
		return err
	}

	v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	for {
		_, ok, err := d.r.NextArrayValue()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := d.decodeValue(elem); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
	}

	return d.r.EndCollection()
}

// decodeArray binds a fixed-arity tuple; element count must match exactly.
func (d *Decoder) decodeArray(v reflect.Value) error {
	if err := d.r.BeginCollection(); err != nil {
		return err
	}

	for i := 0; i < v.Len(); i++ {
		_, ok, err := d.r.NextArrayValue()
		if err != nil {
			return err
		}
		if !ok {
			return d.r.ParseError(InvalidLength, fmt.Sprintf("invalid length %d, expected %d", i, v.Len()))
		}
		if err := d.decodeValue(v.Index(i)); err != nil {
			return err
		}
	}

	_, ok, err := d.r.NextArrayValue()
	if err != nil {
		return err
	}
	if ok {
		return d.r.ParseError(InvalidLength, fmt.Sprintf("invalid length, expected %d", v.Len()))
	}

	return d.r.EndCollection()
}

func isTupleStruct(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == tupleType {
			return true
		}
	}
	return false
}

func (d *Decoder) decodeTupleStruct(v reflect.Value) error {
	if err := d.r.BeginCollection(); err != nil {
		return err
	}

	t := v.Type()
	n := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if (f.Anonymous && f.Type == tupleType) || !f.IsExported() {
			continue
		}
		n = n + 1
		_, ok, err := d.r.NextArrayValue()
		if err != nil {
			return err
		}
		if !ok {
			return d.r.ParseError(InvalidLength, fmt.Sprintf("invalid length %d, expected %d", n-1, tupleArity(t)))
		}
		if err := d.decodeValue(v.Field(i)); err != nil {
			return err
		}
	}

	_, ok, err := d.r.NextArrayValue()
	if err != nil {
		return err
	}
	if ok {
		return d.r.ParseError(InvalidLength, fmt.Sprintf("invalid length, expected %d", tupleArity(t)))
	}

	return d.r.EndCollection()
}

func tupleArity(t reflect.Type) int {
	n := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if (f.Anonymous && f.Type == tupleType) || !f.IsExported() {
			continue
		}
		n = n + 1
	}
	return n
}

// DecodeRecord drives fn once per property of the record at the cursor,
// positioned just past the property's equals sign. The first record bound
// from a Decoder is the implicit top-level object and has no brackets; every
// nested record is bracketed.
func (d *Decoder) DecodeRecord(fn func(key string) error) error {
	hadStarted := d.startedBaseStruct
	if hadStarted {
		if err := d.r.BeginCollection(); err != nil {
			return err
		}
	} else {
		d.startedBaseStruct = true
	}

	for {
		ended, err := d.r.IsCollectionEnded()
		if err != nil {
			return err
		}
		if ended {
			break
		}

		key, err := d.r.ReadIdentifier()
		if err != nil {
			return err
		}
		if _, err := d.r.ExpectToken(EqualsToken); err != nil {
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
	}

	if hadStarted {
		return d.r.EndCollection()
	}
	return nil
}

type structField struct {
	name      string
	index     int
	duplicate bool
	optional  bool
}

// structFieldsOf resolves the bindable fields of a struct type from its
// clauser tags. Pointer fields and duplicate-key fields are optional;
// everything else is required.
func structFieldsOf(t reflect.Type) ([]structField, *Error) {
	var fields []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		duplicate := false
		if tag, ok := f.Tag.Lookup("clauser"); ok {
			tagName, opts, _ := strings.Cut(tag, ",")
			if tagName == "-" && opts == "" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				switch opt {
				case "duplicate":
					duplicate = true
				case "":
				default:
					return nil, NewError(InvalidState, fmt.Sprintf("unknown clauser tag option %q on field %s.%s", opt, t, f.Name))
				}
			}
		}

		if duplicate && f.Type.Kind() != reflect.Slice {
			return nil, NewError(InvalidState, fmt.Sprintf("duplicate-key field %s.%s must be a slice", t, f.Name))
		}

		fields = append(fields, structField{
			name:      name,
			index:     i,
			duplicate: duplicate,
			optional:  duplicate || f.Type.Kind() == reflect.Pointer,
		})
	}
	return fields, nil
}

// decodeStruct binds a record into a struct. ignoreKey, when non-empty,
// names a property that is silently skipped; the union decoder uses it to
// pass over an internal tag.
func (d *Decoder) decodeStruct(v reflect.Value, ignoreKey string) error {
	fields, ferr := structFieldsOf(v.Type())
	if ferr != nil {
		return ferr
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}

	seen := make([]bool, len(fields))
	err := d.DecodeRecord(func(key string) error {
		if ignoreKey != "" && key == ignoreKey {
			return d.r.SkipValue()
		}

		idx := -1
		for i, f := range fields {
			if f.name == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return NewUnknownFieldError(key, names)
		}

		f := fields[idx]
		fv := v.Field(f.index)
		if f.duplicate {
			elem := reflect.New(fv.Type().Elem()).Elem()
			if err := d.decodeValue(elem); err != nil {
				return err
			}
			fv.Set(reflect.Append(fv, elem))
			return nil
		}

		if seen[idx] {
			return NewDuplicateFieldError(f.name)
		}
		seen[idx] = true
		return d.decodeValue(fv)
	})
	if err != nil {
		return err
	}

	for i, f := range fields {
		if !seen[i] && !f.optional {
			return NewMissingFieldError(f.name)
		}
	}
	return nil
}

func (d *Decoder) decodeMapValue(v reflect.Value) error {
	t := v.Type()
	if t.Key().Kind() != reflect.String {
		return NewError(Unsupported, fmt.Sprintf("cannot bind into %s, map keys must be strings", t))
	}
	if v.IsNil() {
		v.Set(reflect.MakeMap(t))
	}

	return d.DecodeRecord(func(key string) error {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.decodeValue(elem); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
		return nil
	})
}

// decodeAny binds a self-describing value: the next token decides the shape.
// Number lexemes with a decimal point come out as float64, others as int64;
// bracketed values are discerned into []any or map[string]any.
func (d *Decoder) decodeAny(v reflect.Value) error {
	rt, ok, err := d.r.PeekNextType()
	if err != nil {
		return err
	}
	if !ok {
		v.SetZero()
		return nil
	}

	switch rt {
	case RealBoolean:
		b, err := d.r.ReadBoolean()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(b))
		return nil

	case RealNumber:
		tok, err := d.r.ExpectToken(NumberToken)
		if err != nil {
			return err
		}
		s := d.r.tok.StrForToken(tok)
		if strings.Contains(s, ".") {
			f, perr := strconv.ParseFloat(s, 64)
			if perr != nil {
				return d.r.invalidNumberError(tok, s)
			}
			v.Set(reflect.ValueOf(f))
			return nil
		}
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return d.r.invalidNumberError(tok, s)
		}
		v.Set(reflect.ValueOf(n))
		return nil

	case RealString:
		s, err := d.r.ReadStringlike()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(s))
		return nil

	case RealIdentifier:
		s, err := d.r.ReadIdentifier()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(s))
		return nil

	case RealObjectOrArray:
		ct, ok, err := d.r.TryDiscernArrayOrMap()
		if err != nil {
			return err
		}
		if !ok {
			// an empty {} carries no information; consume it and leave the
			// value absent
			if err := d.r.BeginCollection(); err != nil {
				return err
			}
			if err := d.r.EndCollection(); err != nil {
				return err
			}
			v.SetZero()
			return nil
		}

		if ct == CollectionArray {
			var s []any
			if err := d.decodeValue(reflect.ValueOf(&s).Elem()); err != nil {
				return err
			}
			v.Set(reflect.ValueOf(s))
			return nil
		}

		m := map[string]any{}
		if err := d.decodeValue(reflect.ValueOf(&m).Elem()); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(m))
		return nil
	}

	return NewError(InvalidState, fmt.Sprintf("unhandled value type %s", rt))
}
