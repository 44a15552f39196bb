// Package scenario loads declarative mismatch scenarios from TOML files.
// A scenario declares nominal types, trait impls with their associated-type
// projections, user-defined dereference steps, and the expected/actual
// pairs to diagnose. The loader builds a type interner and a table oracle
// from the declarations, so the CLI and tests drive the diagnosis core
// without a host compiler.
package scenario

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"remedy/internal/expr"
	"remedy/internal/oracle"
	"remedy/internal/source"
	"remedy/internal/types"
)

// Request is one mismatch to diagnose.
type Request struct {
	Expected types.TypeID
	Actual   types.TypeID
	Expr     expr.Fact
}

// Scenario is a fully built diagnosis world: interners, oracle, and the
// requests declared by the file.
type Scenario struct {
	Title    string
	FileID   source.FileID
	In       *types.Interner
	Strs     *source.Interner
	Oracle   *oracle.Table
	Requests []Request

	adts map[string]adtEntry // short name -> identity
}

type adtEntry struct {
	item source.StringID
	name source.StringID
}

type document struct {
	Title      string         `toml:"title"`
	Adts       []adtDecl      `toml:"adt"`
	Traits     []traitDecl    `toml:"trait"`
	Impls      []implDecl     `toml:"impl"`
	Derefs     []derefDecl    `toml:"deref"`
	Mismatches []mismatchDecl `toml:"mismatch"`
}

type adtDecl struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type traitDecl struct {
	Path string `toml:"path"`
}

type implDecl struct {
	Trait       string            `toml:"trait"`
	Self        string            `toml:"self"`
	Arg         string            `toml:"arg"`
	Projections map[string]string `toml:"projections"`
}

type derefDecl struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

type mismatchDecl struct {
	Expected     string `toml:"expected"`
	Actual       string `toml:"actual"`
	MutablePlace bool   `toml:"mutable_place"`
}

// Load reads a scenario file into the file set and parses it.
func Load(fs *source.FileSet, path string) (*Scenario, error) {
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return Parse(fs, fileID)
}

// Parse builds a scenario from an already loaded file.
func Parse(fs *source.FileSet, fileID source.FileID) (*Scenario, error) {
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("scenario: unknown file id %d", fileID)
	}

	var doc document
	if err := toml.Unmarshal(file.Content, &doc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", file.Path, err)
	}

	sc := &Scenario{
		Title:  doc.Title,
		FileID: fileID,
		In:     types.NewInterner(),
		Strs:   source.NewInterner(),
		adts:   make(map[string]adtEntry),
	}
	sc.Oracle = oracle.NewTable(sc.In, sc.Strs)

	// Well-known std items are always declared; the scenario adds its own.
	sc.declareAdt("String", oracle.PathString)
	sc.declareAdt("Result", oracle.PathResult)

	for _, d := range doc.Adts {
		if d.Name == "" || d.Path == "" {
			return nil, fmt.Errorf("scenario %s: adt needs both name and path", file.Path)
		}
		if existing, ok := sc.adts[d.Name]; ok && sc.Strs.MustLookup(existing.item) != d.Path {
			return nil, fmt.Errorf("scenario %s: duplicate adt %q", file.Path, d.Name)
		}
		sc.declareAdt(d.Name, d.Path)
	}

	for _, t := range doc.Traits {
		if t.Path == "" {
			return nil, fmt.Errorf("scenario %s: trait needs a path", file.Path)
		}
		sc.Oracle.RegisterTrait(t.Path)
	}

	for i, im := range doc.Impls {
		if err := sc.addImpl(im); err != nil {
			return nil, fmt.Errorf("scenario %s: impl #%d: %w", file.Path, i+1, err)
		}
	}

	for i, d := range doc.Derefs {
		from, err := sc.InternTypeExpr(d.From)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: deref #%d: %w", file.Path, i+1, err)
		}
		to, err := sc.InternTypeExpr(d.To)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: deref #%d: %w", file.Path, i+1, err)
		}
		sc.Oracle.AddDeref(from, to)
	}

	spans := mismatchSpans(file)
	for i, m := range doc.Mismatches {
		expected, err := sc.InternTypeExpr(m.Expected)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: mismatch #%d: %w", file.Path, i+1, err)
		}
		actual, err := sc.InternTypeExpr(m.Actual)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: mismatch #%d: %w", file.Path, i+1, err)
		}
		span := source.Span{File: fileID, Start: 0, End: uint32(len(file.Content))}
		if i < len(spans) {
			span = spans[i]
		}
		sc.Requests = append(sc.Requests, Request{
			Expected: expected,
			Actual:   actual,
			Expr:     expr.Fact{At: span, Mutable: m.MutablePlace},
		})
	}
	return sc, nil
}

func (sc *Scenario) declareAdt(name, path string) {
	sc.adts[name] = adtEntry{
		item: sc.Strs.Intern(path),
		name: sc.Strs.Intern(name),
	}
}

func (sc *Scenario) addImpl(im implDecl) error {
	if im.Trait == "" || im.Self == "" {
		return fmt.Errorf("impl needs trait and self")
	}
	trait := sc.Oracle.RegisterTrait(im.Trait)
	self, err := sc.InternTypeExpr(im.Self)
	if err != nil {
		return err
	}
	arg := types.NoTypeID
	if im.Arg != "" {
		arg, err = sc.InternTypeExpr(im.Arg)
		if err != nil {
			return err
		}
	}
	projections := make(map[string]types.TypeID, len(im.Projections))
	for assoc, e := range im.Projections {
		ty, err := sc.InternTypeExpr(e)
		if err != nil {
			return fmt.Errorf("projection %s: %w", assoc, err)
		}
		projections[assoc] = ty
	}
	sc.Oracle.AddImpl(self, trait, arg, projections)
	return nil
}

// mismatchSpans locates every [[mismatch]] header so diagnostics can point
// at the declaration that produced them.
func mismatchSpans(file *source.File) []source.Span {
	const header = "[[mismatch]]"
	var spans []source.Span
	off := 0
	for {
		idx := bytes.Index(file.Content[off:], []byte(header))
		if idx < 0 {
			break
		}
		start := uint32(off + idx)
		spans = append(spans, source.Span{
			File:  file.ID,
			Start: start,
			End:   start + uint32(len(header)),
		})
		off += idx + len(header)
	}
	return spans
}
