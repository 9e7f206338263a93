package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spawnSource = `package spawn

type Wave struct {
	Count int64   ` + "`clauser:\"count\"`" + `
	Delay float64 ` + "`clauser:\"delay\"`" + `
}

type SpawnTable struct {
	Name  string ` + "`clauser:\"name\"`" + `
	Notes *string ` + "`clauser:\"notes\"`" + `
	Waves []Wave ` + "`clauser:\"wave,duplicate\"`" + `
}

type ignored struct {
	Field int
}
`

func TestScanSource(t *testing.T) {
	pkg, structs, err := ScanSource("spawn.go", []byte(spawnSource))
	require.NoError(t, err)
	assert.Equal(t, "spawn", pkg)
	require.Len(t, structs, 3)

	assert.Equal(t, Struct{
		Name: "Wave",
		Fields: []Field{
			{GoName: "Count", Key: "count"},
			{GoName: "Delay", Key: "delay"},
		},
	}, structs[0])

	assert.Equal(t, Struct{
		Name: "SpawnTable",
		Fields: []Field{
			{GoName: "Name", Key: "name"},
			{GoName: "Notes", Key: "notes", Optional: true},
			{GoName: "Waves", Key: "wave", Elem: "Wave", Duplicate: true},
		},
		HasDuplicate: true,
	}, structs[1])

	targets := DuplicateTargets(structs)
	require.Len(t, targets, 1)
	assert.Equal(t, "SpawnTable", targets[0].Name)
}

func TestScanRejectsNonSliceDuplicate(t *testing.T) {
	src := "package x\n\ntype Bad struct {\n\tItem string `clauser:\"item,duplicate\"`\n}\n"
	_, _, err := ScanSource("bad.go", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a slice")
}

func TestScanRejectsUnknownTagOption(t *testing.T) {
	src := "package x\n\ntype Bad struct {\n\tItem []string `clauser:\"item,dup\"`\n}\n"
	_, _, err := ScanSource("bad.go", []byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown clauser tag option")
}

func TestGenerate(t *testing.T) {
	_, structs, err := ScanSource("spawn.go", []byte(spawnSource))
	require.NoError(t, err)

	src, err := Generate("spawn", DuplicateTargets(structs))
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "// Code generated by \"clauser generate\". DO NOT EDIT.")
	assert.Contains(t, out, "package spawn")
	assert.Contains(t, out, `import "github.com/azrogers/mapzk/clauser"`)

	// the compile-time field list, normal keys first
	assert.Contains(t, out, `var spawnTableFields = []string{"name", "notes", "wave"}`)

	assert.Contains(t, out, "func (v *SpawnTable) UnmarshalClauser(d *clauser.Decoder) error {")
	assert.Contains(t, out, "seenName := false")
	assert.Contains(t, out, `return clauser.NewDuplicateFieldError("name")`)
	assert.Contains(t, out, "var elem Wave")
	assert.Contains(t, out, "v.Waves = append(v.Waves, elem)")
	assert.Contains(t, out, "return clauser.NewUnknownFieldError(key, spawnTableFields)")
	assert.Contains(t, out, `return clauser.NewMissingFieldError("name")`)

	// optional fields don't get a missing-field check
	assert.NotContains(t, out, `NewMissingFieldError("notes")`)

	// structs without duplicate keys are left to reflection
	assert.NotContains(t, out, "func (v *Wave) UnmarshalClauser")
}

func TestGenerateNothing(t *testing.T) {
	_, err := Generate("spawn", nil)
	require.Error(t, err)
}
