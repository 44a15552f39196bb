package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"remedy/internal/diag"
	"remedy/internal/driver"
	"remedy/internal/source"
)

// printer renders diagnostics in the human-readable format:
//
//	error[TYP3001]: mismatched types
//	  --> scenarios/basic.toml:12:1
//	  expected `u64`, found `&mut u64`
//	  note: ...
//	  help: dereference the value: try `*`
type printer struct {
	fs       *source.FileSet
	color    bool
	pathMode string
	quiet    bool
}

// print writes every file's diagnostics and returns the process exit code.
func (p *printer) print(out io.Writer, results []driver.FileResult) int {
	errStyle := color.New(color.FgRed, color.Bold)
	warnStyle := color.New(color.FgYellow, color.Bold)
	infoStyle := color.New(color.FgCyan, color.Bold)
	locStyle := color.New(color.FgBlue)
	helpStyle := color.New(color.FgGreen)
	for _, s := range []*color.Color{errStyle, warnStyle, infoStyle, locStyle, helpStyle} {
		if p.color {
			s.EnableColor()
		} else {
			s.DisableColor()
		}
	}

	exit := 0
	for _, res := range results {
		if res.Err != nil {
			exit = 1
			fmt.Fprintf(out, "%s %s: %v\n", errStyle.Sprint("error:"), res.Path, res.Err)
			continue
		}
		if res.Bag.HasErrors() {
			exit = 1
		}
		if !p.quiet && res.Title != "" {
			fmt.Fprintf(out, "== %s ==\n", res.Title)
		}
		for _, d := range res.Bag.Items() {
			var sevStyle *color.Color
			switch d.Severity {
			case diag.SevError:
				sevStyle = errStyle
			case diag.SevWarning:
				sevStyle = warnStyle
			default:
				sevStyle = infoStyle
			}
			head := fmt.Sprintf("%s[%s]", strings.ToLower(d.Severity.String()), d.Code.ID())
			fmt.Fprintf(out, "%s: %s\n", sevStyle.Sprint(head), d.Message)
			fmt.Fprintf(out, "  --> %s\n", locStyle.Sprint(p.location(d.Primary)))
			for _, n := range d.Notes {
				fmt.Fprintf(out, "  note: %s\n", n.Msg)
			}
			for _, f := range d.Fixes {
				fmt.Fprintf(out, "  %s %s: try `%s`\n", helpStyle.Sprint("help:"), f.Title, f.Detail)
			}
		}
	}
	return exit
}

func (p *printer) location(sp source.Span) string {
	file := p.fs.Get(sp.File)
	if file == nil {
		return fmt.Sprintf("<unknown file %d>", sp.File)
	}
	pos := file.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", file.FormatPath(p.pathMode, p.fs.BaseDir()), pos.Line, pos.Col)
}

type jsonFix struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type jsonNote struct {
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	DocURL   string     `json:"doc_url"`
	Message  string     `json:"message"`
	Path     string     `json:"path"`
	Line     uint32     `json:"line"`
	Col      uint32     `json:"col"`
	Notes    []jsonNote `json:"notes,omitempty"`
	Fixes    []jsonFix  `json:"fixes,omitempty"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	Title       string           `json:"title,omitempty"`
	FromCache   bool             `json:"from_cache,omitempty"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

func printJSON(out io.Writer, fs *source.FileSet, results []driver.FileResult, pathMode string) (int, error) {
	exit := 0
	files := make([]jsonFile, 0, len(results))
	for _, res := range results {
		jf := jsonFile{Path: res.Path, Title: res.Title, FromCache: res.FromCache}
		if res.Err != nil {
			exit = 1
			jf.Error = res.Err.Error()
			files = append(files, jf)
			continue
		}
		if res.Bag.HasErrors() {
			exit = 1
		}
		for _, d := range res.Bag.Items() {
			jd := jsonDiagnostic{
				Severity: strings.ToLower(d.Severity.String()),
				Code:     d.Code.ID(),
				DocURL:   d.Code.DocURL(),
				Message:  d.Message,
			}
			if file := fs.Get(d.Primary.File); file != nil {
				pos := file.Position(d.Primary.Start)
				jd.Path = file.FormatPath(pathMode, fs.BaseDir())
				jd.Line = pos.Line
				jd.Col = pos.Col
			}
			for _, n := range d.Notes {
				jd.Notes = append(jd.Notes, jsonNote{Message: n.Msg})
			}
			for _, f := range d.Fixes {
				jd.Fixes = append(jd.Fixes, jsonFix{Kind: f.Kind, Title: f.Title, Detail: f.Detail})
			}
			jf.Diagnostics = append(jf.Diagnostics, jd)
		}
		files = append(files, jf)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(files); err != nil {
		return exit, err
	}
	return exit, nil
}
