package scenario

import (
	"fmt"
	"strings"

	"remedy/internal/types"
)

// InternTypeExpr parses a type expression and interns the result.
//
// Grammar: references (`&T`, `&mut T`), numeric primitives (`int`, `i32`,
// `u8`, `f64`, ...), `str`, inference placeholders (`_`, `{integer}`,
// `{float}`), and declared nominal types with optional angle-bracket
// arguments (`Result<u8, ParseIntError>`).
func (sc *Scenario) InternTypeExpr(s string) (types.TypeID, error) {
	p := &typeParser{sc: sc, src: s}
	id, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: unexpected trailing input at offset %d", s, p.pos)
	}
	return id, nil
}

type typeParser struct {
	sc  *Scenario
	src string
	pos int
}

func (p *typeParser) parseType() (types.TypeID, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: unexpected end of input", p.src)
	}
	switch c := p.src[p.pos]; {
	case c == '&':
		p.pos++
		p.skipSpace()
		mut := types.Immutable
		if p.peekWord() == "mut" {
			p.readWord()
			mut = types.Mutable
		}
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.sc.In.Intern(types.MakeReference(elem, mut)), nil
	case c == '{':
		return p.parsePlaceholder()
	default:
		return p.parseNamed()
	}
}

func (p *typeParser) parsePlaceholder() (types.TypeID, error) {
	end := strings.IndexByte(p.src[p.pos:], '}')
	if end < 0 {
		return types.NoTypeID, fmt.Errorf("type %q: unterminated placeholder", p.src)
	}
	lit := p.src[p.pos : p.pos+end+1]
	p.pos += end + 1
	switch lit {
	case "{integer}":
		return p.sc.In.InternInfer(types.InferInt, p.sc.Strs.Intern(lit)), nil
	case "{float}":
		return p.sc.In.InternInfer(types.InferFloat, p.sc.Strs.Intern(lit)), nil
	default:
		return types.NoTypeID, fmt.Errorf("type %q: unknown placeholder %s", p.src, lit)
	}
}

var numericWidths = map[string]types.Type{
	"i8":  types.MakeInt(types.Width8),
	"i16": types.MakeInt(types.Width16),
	"i32": types.MakeInt(types.Width32),
	"i64": types.MakeInt(types.Width64),
	"u8":  types.MakeUint(types.Width8),
	"u16": types.MakeUint(types.Width16),
	"u32": types.MakeUint(types.Width32),
	"u64": types.MakeUint(types.Width64),
	"f32": types.MakeFloat(types.Width32),
	"f64": types.MakeFloat(types.Width64),
}

func (p *typeParser) parseNamed() (types.TypeID, error) {
	word := p.readWord()
	if word == "" {
		return types.NoTypeID, fmt.Errorf("type %q: expected a type at offset %d", p.src, p.pos)
	}
	b := p.sc.In.Builtins()
	switch word {
	case "_":
		return p.sc.In.InternInfer(types.InferAny, p.sc.Strs.Intern("_")), nil
	case "int":
		return b.Int, nil
	case "uint":
		return b.Uint, nil
	case "float":
		return b.Float, nil
	case "str":
		return b.Str, nil
	}
	if t, ok := numericWidths[word]; ok {
		return p.sc.In.Intern(t), nil
	}

	entry, ok := p.sc.adts[word]
	if !ok {
		return types.NoTypeID, fmt.Errorf("type %q: unknown type name %q (declare it with [[adt]])", p.src, word)
	}
	var args []types.TypeID
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		for {
			arg, err := p.parseType()
			if err != nil {
				return types.NoTypeID, err
			}
			args = append(args, arg)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return types.NoTypeID, fmt.Errorf("type %q: unterminated type arguments", p.src)
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == '>' {
				p.pos++
				break
			}
			return types.NoTypeID, fmt.Errorf("type %q: expected ',' or '>' at offset %d", p.src, p.pos)
		}
	}
	return p.sc.In.InternAdt(entry.item, entry.name, args), nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peekWord() string {
	end := p.pos
	for end < len(p.src) && isWordByte(p.src[end]) {
		end++
	}
	return p.src[p.pos:end]
}

func (p *typeParser) readWord() string {
	w := p.peekWord()
	p.pos += len(w)
	return w
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
