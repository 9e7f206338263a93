package clauser

import (
	"testing"
)

type duplicateKeys struct {
	Item []string `clauser:"item,duplicate"`
}

func TestDuplicateKeys(t *testing.T) {
	expectValue(t, "val = { item = one item = two item = three }",
		container(duplicateKeys{Item: []string{"one", "two", "three"}}))
	expectValue(t, "val = { item = one }",
		container(duplicateKeys{Item: []string{"one"}}))
}

type duplicateAndNormalKeys struct {
	Item    []string `clauser:"item,duplicate"`
	Unique1 int32    `clauser:"unique1"`
	Unique2 string   `clauser:"unique2"`
}

func TestDuplicateAndNormalKeys(t *testing.T) {
	expectValue(t, "val = { item = one unique1 = 50 item = two item = three unique2 = cool }",
		container(duplicateAndNormalKeys{
			Item:    []string{"one", "two", "three"},
			Unique1: 50,
			Unique2: "cool",
		}))
}

func TestEmptyDuplicate(t *testing.T) {
	// duplicate-key fields are fine with zero occurrences
	expectValue(t, "val = { unique1 = 0 unique2 = test }",
		container(duplicateAndNormalKeys{
			Unique1: 0,
			Unique2: "test",
		}))
	expectValue(t, "val = { }", container(duplicateKeys{}))
}

func TestDuplicateNormalKeyStillFails(t *testing.T) {
	expectError[singleContainer[duplicateAndNormalKeys]](t,
		"val = { item = one unique1 = 1 unique1 = 2 }", DuplicateField)
}

func TestDuplicateTagRequiresSlice(t *testing.T) {
	type brokenSchema struct {
		Item string `clauser:"item,duplicate"`
	}
	expectError[singleContainer[brokenSchema]](t, "val = { item = one }", InvalidState)
}

func TestDuplicateNestedValues(t *testing.T) {
	type wave struct {
		Count int64 `clauser:"count"`
	}
	type spawner struct {
		Waves []wave `clauser:"wave,duplicate"`
	}

	expectValue(t, "val = { wave = { count = 2 } wave = { count = 5 } }",
		container(spawner{Waves: []wave{{Count: 2}, {Count: 5}}}))
}
