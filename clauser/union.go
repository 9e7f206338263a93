package clauser

import (
	"fmt"
	"reflect"
)

// UnionVariant declares one alternative of a Union. Type is the Go type the
// variant's payload binds into; nil marks a unit variant with no payload.
type UnionVariant struct {
	Name string
	Type reflect.Type
}

// UnionDesc describes how a sum value is discriminated in the input. With no
// options set, a bare identifier selects the variant by name. Untagged tries
// the variants in declared order against the same cursor and the first
// successful bind wins. Tag alone names a field inside the value's record
// that carries the variant name (internal tagging); Tag plus Content reads
// the name from one field and the payload from another (adjacent tagging).
type UnionDesc struct {
	Tag      string
	Content  string
	Untagged bool
	Variants []UnionVariant
}

// Union is implemented by destination types that hold one of several
// variants. SetVariant receives the selected variant's name and its bound
// payload; unit variants get nil.
type Union interface {
	UnionDesc() UnionDesc
	SetVariant(name string, value any)
}

func variantNames(desc UnionDesc) []string {
	names := make([]string, len(desc.Variants))
	for i, v := range desc.Variants {
		names[i] = v.Name
	}
	return names
}

func findVariant(desc UnionDesc, name string) *UnionVariant {
	for i := range desc.Variants {
		if desc.Variants[i].Name == name {
			return &desc.Variants[i]
		}
	}
	return nil
}

func (d *Decoder) decodeUnion(u Union) error {
	desc := u.UnionDesc()
	switch {
	case desc.Untagged:
		return d.decodeUntaggedUnion(u, desc)
	case desc.Tag != "" && desc.Content != "":
		return d.decodeAdjacentUnion(u, desc)
	case desc.Tag != "":
		return d.decodeInternalUnion(u, desc)
	}
	return d.decodeIdentifierUnion(u, desc)
}

// decodeIdentifierUnion handles the default convention: a bare identifier
// names the variant. Strings that match a declared variant count too; a
// string that matches nothing binds as a payload if some variant takes a
// string. Bracketed values go through the structured-variant form.
func (d *Decoder) decodeIdentifierUnion(u Union, desc UnionDesc) error {
	rt, err := d.r.PeekNextTypeExpect()
	if err != nil {
		return err
	}

	switch rt {
	case RealIdentifier:
		name, err := d.r.ReadIdentifier()
		if err != nil {
			return err
		}
		variant := findVariant(desc, name)
		if variant == nil {
			return NewUnknownVariantError(name, variantNames(desc))
		}
		if variant.Type != nil {
			return d.r.ParseError(InvalidType, fmt.Sprintf("variant %s expects a value", variant.Name))
		}
		u.SetVariant(variant.Name, nil)
		return nil

	case RealString:
		s, err := d.r.PeekExpectedString()
		if err != nil {
			return err
		}
		if variant := findVariant(desc, s); variant != nil {
			if _, err := d.r.ReadString(); err != nil {
				return err
			}
			if variant.Type != nil {
				return d.r.ParseError(InvalidType, fmt.Sprintf("variant %s expects a value", variant.Name))
			}
			u.SetVariant(variant.Name, nil)
			return nil
		}
		// not a variant name; bind it as a payload if some variant takes a
		// string
		for i := range desc.Variants {
			v := desc.Variants[i]
			if v.Type != nil && v.Type.Kind() == reflect.String {
				value, err := d.bindVariantPayload(v)
				if err != nil {
					return err
				}
				u.SetVariant(v.Name, value)
				return nil
			}
		}
		return NewUnknownVariantError(s, variantNames(desc))

	case RealObjectOrArray:
		_, ok, err := d.r.TryDiscernArrayOrMap()
		if err != nil {
			return err
		}
		if !ok {
			return d.r.ParseError(InvalidValue, "expected union value, found empty collection")
		}
		return d.decodeStructuredVariant(u, desc)
	}

	return d.decodeStructuredVariant(u, desc)
}

// decodeStructuredVariant reads the { VariantName = payload } form.
func (d *Decoder) decodeStructuredVariant(u Union, desc UnionDesc) error {
	rt, err := d.r.PeekNextTypeExpect()
	if err != nil {
		return err
	}
	if rt != RealObjectOrArray {
		// whatever heads the value, it can't name a variant
		tok, err := d.r.tok.Peek()
		if err != nil {
			return err
		}
		return d.r.unexpectedTokenError(*tok, IdentifierToken)
	}

	if err := d.r.BeginCollection(); err != nil {
		return err
	}
	name, err := d.r.ReadIdentifier()
	if err != nil {
		return err
	}
	variant := findVariant(desc, name)
	if variant == nil {
		return NewUnknownVariantError(name, variantNames(desc))
	}
	if _, err := d.r.ExpectToken(EqualsToken); err != nil {
		return err
	}
	value, err := d.bindVariantPayload(*variant)
	if err != nil {
		return err
	}
	if err := d.r.EndCollection(); err != nil {
		return err
	}
	u.SetVariant(variant.Name, value)
	return nil
}

// decodeUntaggedUnion tries each variant against the same cursor; a failed
// bind is a backtrack signal, not a surfaced error.
func (d *Decoder) decodeUntaggedUnion(u Union, desc UnionDesc) error {
	pos := d.r.tok.Position()
	depth := d.r.depth
	started := d.startedBaseStruct

	for i := range desc.Variants {
		v := desc.Variants[i]
		value, err := d.bindVariantPayload(v)
		if err == nil {
			u.SetVariant(v.Name, value)
			return nil
		}
		d.r.tok.pos = pos
		d.r.depth = depth
		d.startedBaseStruct = started
	}

	return NewError(Unknown, "data did not match any variant of untagged union")
}

// decodeInternalUnion scans the record ahead for the tag field, rewinds, and
// binds the record into the selected variant with the tag passed over.
func (d *Decoder) decodeInternalUnion(u Union, desc UnionDesc) error {
	rt, err := d.r.PeekNextTypeExpect()
	if err != nil {
		return err
	}
	if rt != RealObjectOrArray {
		return d.r.ParseError(InvalidType, fmt.Sprintf("internally tagged union must be an object, found %s", rt))
	}

	pos := d.r.tok.Position()
	depth := d.r.depth

	if err := d.r.BeginCollection(); err != nil {
		return err
	}
	name := ""
	found := false
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
		if key == desc.Tag {
			// the tag has to be a bare identifier
			if name, err = d.r.ReadIdentifier(); err != nil {
				return err
			}
			found = true
		} else if err := d.r.SkipValue(); err != nil {
			return err
		}
	}
	d.r.tok.pos = pos
	d.r.depth = depth

	if !found {
		return NewMissingFieldError(desc.Tag)
	}
	variant := findVariant(desc, name)
	if variant == nil {
		return NewUnknownVariantError(name, variantNames(desc))
	}

	if variant.Type == nil {
		// unit variant: the record holds nothing but the tag
		err := d.DecodeRecord(func(key string) error {
			if key == desc.Tag {
				return d.r.SkipValue()
			}
			return NewUnknownFieldError(key, []string{desc.Tag})
		})
		if err != nil {
			return err
		}
		u.SetVariant(variant.Name, nil)
		return nil
	}

	if variant.Type.Kind() != reflect.Struct || isTupleStruct(variant.Type) {
		return NewError(Unsupported, fmt.Sprintf("internally tagged variant %s must be a plain struct", variant.Name))
	}
	pv := reflect.New(variant.Type)
	if err := d.decodeStruct(pv.Elem(), desc.Tag); err != nil {
		return err
	}
	u.SetVariant(variant.Name, pv.Elem().Interface())
	return nil
}

// decodeAdjacentUnion reads { tag = Variant content = payload }; the tag
// field has to come first.
func (d *Decoder) decodeAdjacentUnion(u Union, desc UnionDesc) error {
	if err := d.r.BeginCollection(); err != nil {
		return err
	}

	key, err := d.r.ReadIdentifier()
	if err != nil {
		return err
	}
	if key != desc.Tag {
		return d.r.ParseError(UnexpectedTokenError, fmt.Sprintf("expected tag field %s, found %s", desc.Tag, key))
	}
	if _, err := d.r.ExpectToken(EqualsToken); err != nil {
		return err
	}
	name, err := d.r.ReadIdentifier()
	if err != nil {
		return err
	}
	variant := findVariant(desc, name)
	if variant == nil {
		return NewUnknownVariantError(name, variantNames(desc))
	}

	var value any
	ended, err := d.r.IsCollectionEnded()
	if err != nil {
		return err
	}
	if !ended {
		key, err := d.r.ReadIdentifier()
		if err != nil {
			return err
		}
		if key != desc.Content {
			return d.r.ParseError(UnexpectedTokenError, fmt.Sprintf("expected content field %s, found %s", desc.Content, key))
		}
		if _, err := d.r.ExpectToken(EqualsToken); err != nil {
			return err
		}
		if value, err = d.bindVariantPayload(*variant); err != nil {
			return err
		}
	} else if variant.Type != nil {
		if variant.Type.Kind() != reflect.Pointer {
			return NewMissingFieldError(desc.Content)
		}
		value = reflect.Zero(variant.Type).Interface()
	}

	if err := d.r.EndCollection(); err != nil {
		return err
	}
	u.SetVariant(variant.Name, value)
	return nil
}

// bindVariantPayload materializes one variant's payload from the cursor.
func (d *Decoder) bindVariantPayload(v UnionVariant) (any, error) {
	if v.Type == nil {
		if err := d.decodeUnit(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	pv := reflect.New(v.Type)
	if err := d.decodeValue(pv.Elem()); err != nil {
		return nil, err
	}
	return pv.Elem().Interface(), nil
}
