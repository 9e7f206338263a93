// Package gen rewrites duplicate-key struct declarations into generated
// UnmarshalClauser methods. A field tagged `clauser:"key,duplicate"` makes
// the whole struct a target: the generated method appends one element per
// occurrence of that key, while plain fields keep single-occurrence
// semantics. It also emits a package-level list of every bound key, used for
// unknown-field messages.
//
// The transform is purely syntactic; the emitted code walks the record itself
// instead of going through the decoder's reflection-driven struct binding,
// while each field value is still bound through Decoder.DecodeValue.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const clauserImport = "github.com/azrogers/mapzk/clauser"

// Field is one bindable struct field as seen by the generator.
type Field struct {
	GoName    string
	Key       string
	Elem      string // element type source text, set for duplicate fields
	Duplicate bool
	Optional  bool
}

// Struct is a struct declaration with at least one exported, bindable field.
type Struct struct {
	Name         string
	Fields       []Field
	HasDuplicate bool
}

// ScanSource parses a single Go source file and returns its package name and
// struct declarations.
func ScanSource(filename string, src []byte) (string, []Struct, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return "", nil, err
	}
	structs, err := ScanFile(file)
	if err != nil {
		return "", nil, err
	}
	return file.Name.Name, structs, nil
}

// ScanFile collects the struct declarations of one parsed file.
func ScanFile(file *ast.File) ([]Struct, error) {
	var structs []Struct
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			s, err := scanStruct(ts.Name.Name, st)
			if err != nil {
				return nil, err
			}
			if len(s.Fields) > 0 {
				structs = append(structs, s)
			}
		}
	}
	return structs, nil
}

func scanStruct(name string, st *ast.StructType) (Struct, error) {
	s := Struct{Name: name}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			// embedded fields (including clauser.Tuple markers) are not keys
			continue
		}

		tag := ""
		if field.Tag != nil {
			unquoted, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return Struct{}, fmt.Errorf("%s: bad struct tag %s: %w", name, field.Tag.Value, err)
			}
			tag, _ = reflect.StructTag(unquoted).Lookup("clauser")
		}

		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}

			f := Field{GoName: ident.Name, Key: ident.Name}
			tagName, opts, _ := strings.Cut(tag, ",")
			if tagName == "-" && opts == "" {
				continue
			}
			if tagName != "" {
				f.Key = tagName
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				switch opt {
				case "duplicate":
					f.Duplicate = true
				case "":
				default:
					return Struct{}, fmt.Errorf("%s.%s: unknown clauser tag option %q", name, ident.Name, opt)
				}
			}

			switch t := field.Type.(type) {
			case *ast.ArrayType:
				if f.Duplicate {
					if t.Len != nil {
						return Struct{}, fmt.Errorf("%s.%s: duplicate-key field must be a slice", name, ident.Name)
					}
					f.Elem = types.ExprString(t.Elt)
				}
			case *ast.StarExpr:
				f.Optional = true
			default:
				if f.Duplicate {
					return Struct{}, fmt.Errorf("%s.%s: duplicate-key field must be a slice", name, ident.Name)
				}
			}

			if f.Duplicate {
				s.HasDuplicate = true
			}
			s.Fields = append(s.Fields, f)
		}
	}
	return s, nil
}

// LoadDir loads the package rooted at dir the way the go toolchain sees it
// and scans every syntax file.
func LoadDir(dir string) (string, []Struct, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return "", nil, err
	}
	if len(pkgs) != 1 {
		return "", nil, fmt.Errorf("expected one package in %s, found %d", dir, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return "", nil, fmt.Errorf("loading %s: %v", dir, pkg.Errors[0])
	}

	var structs []Struct
	for _, file := range pkg.Syntax {
		fileStructs, err := ScanFile(file)
		if err != nil {
			return "", nil, err
		}
		structs = append(structs, fileStructs...)
	}
	return pkg.Name, structs, nil
}

// DuplicateTargets filters the scanned structs down to the ones the rewrite
// applies to.
func DuplicateTargets(structs []Struct) []Struct {
	var targets []Struct
	for _, s := range structs {
		if s.HasDuplicate {
			targets = append(targets, s)
		}
	}
	return targets
}

// Generate emits the generated source for the given structs, gofmt-formatted.
func Generate(pkgName string, structs []Struct) ([]byte, error) {
	if len(structs) == 0 {
		return nil, fmt.Errorf("no duplicate-key structs to generate for")
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by \"clauser generate\". DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	fmt.Fprintf(&b, "import %q\n", clauserImport)

	for _, s := range structs {
		emitStruct(&b, s)
	}

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, nil
}

func fieldsVarName(structName string) string {
	return lowerFirst(structName) + "Fields"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func emitStruct(b *bytes.Buffer, s Struct) {
	fieldsVar := fieldsVarName(s.Name)

	// the field-name list goes normal keys first, duplicate keys last
	var keys []string
	for _, f := range s.Fields {
		if !f.Duplicate {
			keys = append(keys, strconv.Quote(f.Key))
		}
	}
	for _, f := range s.Fields {
		if f.Duplicate {
			keys = append(keys, strconv.Quote(f.Key))
		}
	}

	fmt.Fprintf(b, "\n// %s lists every key %s binds, for unknown-field messages.\n", fieldsVar, s.Name)
	fmt.Fprintf(b, "var %s = []string{%s}\n", fieldsVar, strings.Join(keys, ", "))

	fmt.Fprintf(b, "\nfunc (v *%s) UnmarshalClauser(d *clauser.Decoder) error {\n", s.Name)
	for _, f := range s.Fields {
		if !f.Duplicate {
			fmt.Fprintf(b, "\tseen%s := false\n", f.GoName)
		}
	}

	fmt.Fprintf(b, "\terr := d.DecodeRecord(func(key string) error {\n")
	fmt.Fprintf(b, "\t\tswitch key {\n")
	for _, f := range s.Fields {
		fmt.Fprintf(b, "\t\tcase %q:\n", f.Key)
		if f.Duplicate {
			fmt.Fprintf(b, "\t\t\tvar elem %s\n", f.Elem)
			fmt.Fprintf(b, "\t\t\tif err := d.DecodeValue(&elem); err != nil {\n")
			fmt.Fprintf(b, "\t\t\t\treturn err\n")
			fmt.Fprintf(b, "\t\t\t}\n")
			fmt.Fprintf(b, "\t\t\tv.%s = append(v.%s, elem)\n", f.GoName, f.GoName)
			fmt.Fprintf(b, "\t\t\treturn nil\n")
		} else {
			fmt.Fprintf(b, "\t\t\tif seen%s {\n", f.GoName)
			fmt.Fprintf(b, "\t\t\t\treturn clauser.NewDuplicateFieldError(%q)\n", f.Key)
			fmt.Fprintf(b, "\t\t\t}\n")
			fmt.Fprintf(b, "\t\t\tseen%s = true\n", f.GoName)
			fmt.Fprintf(b, "\t\t\treturn d.DecodeValue(&v.%s)\n", f.GoName)
		}
	}
	fmt.Fprintf(b, "\t\tdefault:\n")
	fmt.Fprintf(b, "\t\t\treturn clauser.NewUnknownFieldError(key, %s)\n", fieldsVar)
	fmt.Fprintf(b, "\t\t}\n")
	fmt.Fprintf(b, "\t})\n")
	fmt.Fprintf(b, "\tif err != nil {\n")
	fmt.Fprintf(b, "\t\treturn err\n")
	fmt.Fprintf(b, "\t}\n")
	for _, f := range s.Fields {
		if f.Duplicate || f.Optional {
			continue
		}
		fmt.Fprintf(b, "\tif !seen%s {\n", f.GoName)
		fmt.Fprintf(b, "\t\treturn clauser.NewMissingFieldError(%q)\n", f.Key)
		fmt.Fprintf(b, "\t}\n")
	}
	fmt.Fprintf(b, "\treturn nil\n")
	fmt.Fprintf(b, "}\n")
}

// Run loads the package at dir, generates code for its duplicate-key
// structs, and writes the result next to them.
func Run(dir string, output string) (string, error) {
	pkgName, structs, err := LoadDir(dir)
	if err != nil {
		return "", err
	}

	targets := DuplicateTargets(structs)
	if len(targets) == 0 {
		return "", fmt.Errorf("no duplicate-key structs found in %s", dir)
	}

	src, err := Generate(pkgName, targets)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, output)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
