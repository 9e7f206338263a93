package clauser

import (
	"reflect"
	"testing"
)

type basicEnum struct {
	Name string
}

func (e *basicEnum) UnionDesc() UnionDesc {
	return UnionDesc{Variants: []UnionVariant{
		{Name: "Value1"},
		{Name: "Value2"},
		{Name: "Value3"},
	}}
}

func (e *basicEnum) SetVariant(name string, _ any) {
	e.Name = name
}

func TestBasicEnum(t *testing.T) {
	expectValue(t, "val = Value1", container(basicEnum{Name: "Value1"}))
	expectValue(t, "val = Value2", container(basicEnum{Name: "Value2"}))
	expectValue(t, "val = Value3", container(basicEnum{Name: "Value3"}))

	// a quoted variant name works too
	expectValue(t, `val = "Value2"`, container(basicEnum{Name: "Value2"}))

	expectError[singleContainer[basicEnum]](t, "val = Value0", UnknownVariant)
	expectError[singleContainer[basicEnum]](t, "val = 100", UnexpectedTokenError)
	expectError[singleContainer[basicEnum]](t, "val = ", UnexpectedTokenError)
	expectError[singleContainer[basicEnum]](t, "val = {}", InvalidValue)
}

type pairTuple struct {
	Tuple
	A int64
	B float64
	C string
}

type untaggedEnum struct {
	Name  string
	Value any
}

func (e *untaggedEnum) UnionDesc() UnionDesc {
	return UnionDesc{Untagged: true, Variants: []UnionVariant{
		{Name: "Unit"},
		{Name: "Item", Type: reflect.TypeOf(false)},
		{Name: "Pair", Type: reflect.TypeOf([2]int64{})},
		{Name: "Tuple", Type: reflect.TypeOf(pairTuple{})},
	}}
}

func (e *untaggedEnum) SetVariant(name string, value any) {
	e.Name = name
	e.Value = value
}

func TestBasicUntaggedEnum(t *testing.T) {
	expectValue(t, "val = ", container(untaggedEnum{Name: "Unit"}))
	expectValue(t, "val = yes", container(untaggedEnum{Name: "Item", Value: true}))
	expectValue(t, "val = { 0 1 }", container(untaggedEnum{Name: "Pair", Value: [2]int64{0, 1}}))
	expectValue(t, `val = { 0 1.0 "test" }`,
		container(untaggedEnum{Name: "Tuple", Value: pairTuple{A: 0, B: 1.0, C: "test"}}))

	expectError[singleContainer[untaggedEnum]](t, "val = { yes 1 }", Unknown)
}

type complexUntaggedEnum struct {
	Name  string
	Value any
}

func (e *complexUntaggedEnum) UnionDesc() UnionDesc {
	return UnionDesc{Untagged: true, Variants: []UnionVariant{
		{Name: "Newtype", Type: reflect.TypeOf(int64(0))},
		{Name: "Struct", Type: reflect.TypeOf(singleContainer[[]int64]{})},
		{Name: "Array", Type: reflect.TypeOf([]bool{})},
		{Name: "Tuple", Type: reflect.TypeOf([3]float64{})},
		{Name: "Optional", Type: reflect.TypeOf((*string)(nil))},
	}}
}

func (e *complexUntaggedEnum) SetVariant(name string, value any) {
	e.Name = name
	e.Value = value
}

func TestComplexUntaggedEnum(t *testing.T) {
	expectValue(t, "val = 20", container(complexUntaggedEnum{Name: "Newtype", Value: int64(20)}))
	expectValue(t, "val = { val = { 0 1 2 3 } }",
		container(complexUntaggedEnum{Name: "Struct", Value: container([]int64{0, 1, 2, 3})}))
	expectValue(t, "val = { yes no yes }",
		container(complexUntaggedEnum{Name: "Array", Value: []bool{true, false, true}}))
	expectValue(t, "val = { 0.0 1.0 2.0 }",
		container(complexUntaggedEnum{Name: "Tuple", Value: [3]float64{0.0, 1.0, 2.0}}))

	s := "test"
	expectValue(t, `val = "test"`,
		container(complexUntaggedEnum{Name: "Optional", Value: &s}))
	expectValue(t, "val = ",
		container(complexUntaggedEnum{Name: "Optional", Value: (*string)(nil)}))
}

type internalItem struct {
	Num int64 `clauser:"num"`
}

type internalEnum struct {
	Name string
	Item *internalItem
}

func (e *internalEnum) UnionDesc() UnionDesc {
	return UnionDesc{Tag: "type", Variants: []UnionVariant{
		{Name: "Unit"},
		{Name: "Item", Type: reflect.TypeOf(internalItem{})},
	}}
}

func (e *internalEnum) SetVariant(name string, value any) {
	e.Name = name
	if item, ok := value.(internalItem); ok {
		e.Item = &item
	}
}

func TestInternallyTaggedEnum(t *testing.T) {
	expectValue(t, "val = { type = Unit }", container(internalEnum{Name: "Unit"}))
	expectValue(t, "val = { type = Item num = 900 }",
		container(internalEnum{Name: "Item", Item: &internalItem{Num: 900}}))

	// the tag can come after the variant's own fields
	expectValue(t, "val = { num = 901 type = Item }",
		container(internalEnum{Name: "Item", Item: &internalItem{Num: 901}}))

	expectError[singleContainer[internalEnum]](t, "val = { type = Incorrect }", UnknownVariant)
	expectError[singleContainer[internalEnum]](t, "val = { num = 900 }", MissingField)
	expectError[singleContainer[internalEnum]](t, "val = 900", InvalidType)
	expectError[singleContainer[internalEnum]](t, `val = { type = "String" }`, UnexpectedTokenError)
}

type tripleTuple struct {
	Tuple
	A int64
	B int64
	C float64
}

type adjacentEnum struct {
	Name  string
	Value any
}

func (e *adjacentEnum) UnionDesc() UnionDesc {
	return UnionDesc{Tag: "t", Content: "c", Variants: []UnionVariant{
		{Name: "Unit"},
		{Name: "Str", Type: reflect.TypeOf("")},
		{Name: "Option", Type: reflect.TypeOf((*string)(nil))},
		{Name: "Tuple", Type: reflect.TypeOf(tripleTuple{})},
	}}
}

func (e *adjacentEnum) SetVariant(name string, value any) {
	e.Name = name
	e.Value = value
}

func TestAdjacentlyTaggedEnum(t *testing.T) {
	expectValue(t, "val = { t = Unit }", container(adjacentEnum{Name: "Unit"}))
	expectValue(t, `val = { t = Str c = "test" }`,
		container(adjacentEnum{Name: "Str", Value: "test"}))
	expectValue(t, "val = { t = Option c = }",
		container(adjacentEnum{Name: "Option", Value: (*string)(nil)}))

	s := "test"
	expectValue(t, `val = { t = Option c = "test" }`,
		container(adjacentEnum{Name: "Option", Value: &s}))
	expectValue(t, "val = { t = Tuple c = { 1 2 3.0 } }",
		container(adjacentEnum{Name: "Tuple", Value: tripleTuple{A: 1, B: 2, C: 3.0}}))

	expectError[singleContainer[adjacentEnum]](t, "val = { t = Incorrect }", UnknownVariant)
	expectError[singleContainer[adjacentEnum]](t, "val = { t = Tuple c = }", UnexpectedTokenError)
	expectError[singleContainer[adjacentEnum]](t, "val = { c = {} }", UnexpectedTokenError)
}
