// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ir

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/db47h/pipestat/internal/lex"
	"github.com/pkg/errors"
)

// ErrSyntax is the cause of all errors reported by Parse.
var ErrSyntax = errors.New("syntax error")

// Tokens
const (
	EOF lex.Type = lex.EOF
	Raw lex.Type = iota
	Ident
	Int
	Colon
	Equal
	Comma
	ParenOpen
	ParenClose
	BracketOpen
	BracketClose
	BraceOpen
	BraceClose
)

// Lexer returns a new lexer for one line of a block description.
//
func Lexer(input string) lex.Interface {
	return lex.New(strings.NewReader(input), lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == ':':
		l.Emit(Colon, ":")
	case r == '=':
		l.Emit(Equal, "=")
	case r == ',':
		l.Emit(Comma, ",")
	case r == '(':
		l.Emit(ParenOpen, "(")
	case r == ')':
		l.Emit(ParenClose, ")")
	case r == '[':
		l.Emit(BracketOpen, "[")
	case r == ']':
		l.Emit(BracketClose, "]")
	case r == '{':
		l.Emit(BraceOpen, "{")
	case r == '}':
		l.Emit(BraceClose, "}")
	case r == '/':
		if l.Next() == '/' {
			// comment runs to end of line
			l.AcceptWhile(func(rune) bool { return true })
			return lexEOF
		}
		l.Backup()
		fallthrough
	default:
		l.Emit(Raw, r)
		return lexEOF
	}
	return nil
}

func lexNumber(l *lex.Lexer) lex.StateFn {
	i := int(l.Current() - '0')
	r := l.Next()
	for '0' <= r && r <= '9' {
		i = i*10 + int(r-'0')
		r = l.Next()
	}
	l.Backup()
	l.Emit(Int, i)
	return nil
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteRune(l.Current())
	r := l.Next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Ident, buf.String())
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of line")
	return lexEOF
}

// parser states
const (
	stateTop = iota
	stateBody
	stateDone
)

type parser struct {
	blk   *Block
	state int
	line  string
	lno   int
	l     lex.Interface
	i     lex.Item
}

// Parse reads a textual block description and returns its parsed form.
// Blank lines and // comments are ignored. Parse checks syntax only;
// operand references, register pairing and widths are validated by the
// graph builder.
func Parse(r io.Reader) (*Block, error) {
	p := &parser{blk: &Block{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		p.lno++
		p.line = sc.Text()
		if err := p.parseLine(); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read block description")
	}
	switch p.state {
	case stateTop:
		return nil, errors.Wrap(ErrSyntax, "no block declaration")
	case stateBody:
		return nil, errors.Wrap(ErrSyntax, "missing closing } at end of input")
	}
	return p.blk, nil
}

func (p *parser) errorf(pos lex.Pos, msg string) error {
	return errors.Wrapf(ErrSyntax, "line %d: in %q at pos %d: %s", p.lno, p.line, int(pos)+1, msg)
}

func (p *parser) next() lex.Item {
	p.i = p.l.Lex()
	return p.i
}

func (p *parser) expect(t lex.Type, what string) error {
	if i := p.next(); i.Type != t {
		return p.errorf(i.Pos, "expected "+what)
	}
	return nil
}

func (p *parser) expectIdent(what string) (string, error) {
	if i := p.next(); i.Type != Ident {
		return "", p.errorf(i.Pos, "expected "+what)
	}
	return p.i.Value.(string), nil
}

func (p *parser) expectEOL() error {
	if i := p.next(); i.Type != EOF {
		return p.errorf(i.Pos, "unexpected "+i.String())
	}
	return nil
}

func (p *parser) parseLine() error {
	p.l = Lexer(p.line)
	i := p.next()
	if i.Type == EOF {
		return nil
	}
	switch p.state {
	case stateTop:
		if i.Type != Ident {
			return p.errorf(i.Pos, "expected package or block declaration")
		}
		switch i.Value.(string) {
		case "package":
			name, err := p.expectIdent("package name")
			if err != nil {
				return err
			}
			p.blk.Package = name
			return p.expectEOL()
		case "top":
			if i = p.next(); i.Type != Ident || i.Value.(string) != "block" {
				return p.errorf(i.Pos, "expected block declaration after top")
			}
			return p.parseBlockDecl(true)
		case "block":
			return p.parseBlockDecl(false)
		}
		return p.errorf(i.Pos, "unexpected "+i.String())
	case stateBody:
		if i.Type == BraceClose {
			p.state = stateDone
			return p.expectEOL()
		}
		if i.Type != Ident {
			return p.errorf(i.Pos, "expected statement")
		}
		if name := i.Value.(string); name == "reg" {
			return p.parseReg()
		}
		return p.parseNode(i.Value.(string))
	default: // stateDone
		return p.errorf(i.Pos, "unexpected input after closing }")
	}
}

// parseBlockDecl parses "block NAME(port: type, ...) {". The block keyword
// has already been consumed.
func (p *parser) parseBlockDecl(top bool) error {
	name, err := p.expectIdent("block name")
	if err != nil {
		return err
	}
	if p.blk.Name != "" {
		return p.errorf(p.i.Pos, "duplicate block declaration")
	}
	p.blk.Name = name
	p.blk.Top = top
	if err := p.expect(ParenOpen, "("); err != nil {
		return err
	}
	if i := p.next(); i.Type != ParenClose {
		for {
			if i.Type != Ident {
				return p.errorf(i.Pos, "expected port name")
			}
			pname := i.Value.(string)
			if err := p.expect(Colon, ":"); err != nil {
				return err
			}
			w, clk, err := p.parseType()
			if err != nil {
				return err
			}
			p.blk.Ports = append(p.blk.Ports, Port{Name: pname, Clock: clk, Width: w})
			i = p.next()
			if i.Type == ParenClose {
				break
			}
			if i.Type != Comma {
				return p.errorf(i.Pos, "expected comma or ) in port list")
			}
			i = p.next()
		}
	}
	if err := p.expect(BraceOpen, "{"); err != nil {
		return err
	}
	p.state = stateBody
	return p.expectEOL()
}

// parseType parses "bits[N]", "()" or "clock".
func (p *parser) parseType() (width int, clock bool, err error) {
	i := p.next()
	switch {
	case i.Type == ParenOpen:
		if err := p.expect(ParenClose, ") in unit type"); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	case i.Type == Ident && i.Value.(string) == "clock":
		return 0, true, nil
	case i.Type == Ident && i.Value.(string) == "bits":
		if err := p.expect(BracketOpen, "[ after bits"); err != nil {
			return 0, false, err
		}
		if err := p.expect(Int, "bit width"); err != nil {
			return 0, false, err
		}
		width = p.i.Value.(int)
		if err := p.expect(BracketClose, "] after bit width"); err != nil {
			return 0, false, err
		}
		return width, false, nil
	}
	return 0, false, p.errorf(i.Pos, "expected type")
}

// parseReg parses "reg NAME(bits[N])". The reg keyword has already been
// consumed.
func (p *parser) parseReg() error {
	name, err := p.expectIdent("register name")
	if err != nil {
		return err
	}
	if err := p.expect(ParenOpen, "( after register name"); err != nil {
		return err
	}
	w, clk, err := p.parseType()
	if err != nil {
		return err
	}
	if clk {
		return p.errorf(p.i.Pos, "register cannot be of type clock")
	}
	if err := p.expect(ParenClose, ") after register type"); err != nil {
		return err
	}
	p.blk.Registers = append(p.blk.Registers, Register{Name: name, Width: w})
	return p.expectEOL()
}

// parseNode parses "NAME: type = op(arg, ..., key=value, ...)". The node
// name has already been consumed.
func (p *parser) parseNode(name string) error {
	if err := p.expect(Colon, ": after node name"); err != nil {
		return err
	}
	w, clk, err := p.parseType()
	if err != nil {
		return err
	}
	if clk {
		return p.errorf(p.i.Pos, "node cannot be of type clock")
	}
	if err := p.expect(Equal, "="); err != nil {
		return err
	}
	op, err := p.expectIdent("operation name")
	if err != nil {
		return err
	}
	if err := p.expect(ParenOpen, "( after operation name"); err != nil {
		return err
	}
	n := Node{Name: name, Op: op, Width: w}
	if i := p.next(); i.Type != ParenClose {
		for {
			if i.Type != Ident {
				return p.errorf(i.Pos, "expected operand or attribute name")
			}
			arg := i.Value.(string)
			i = p.next()
			if i.Type == Equal {
				v := p.next()
				var val string
				switch v.Type {
				case Ident:
					val = v.Value.(string)
				case Int:
					val = strconv.Itoa(v.Value.(int))
				default:
					return p.errorf(v.Pos, "expected attribute value")
				}
				if n.Attrs == nil {
					n.Attrs = make(map[string]string)
				}
				n.Attrs[arg] = val
				i = p.next()
			} else {
				n.Operands = append(n.Operands, arg)
			}
			if i.Type == ParenClose {
				break
			}
			if i.Type != Comma {
				return p.errorf(i.Pos, "expected comma or ) in argument list")
			}
			i = p.next()
		}
	}
	p.blk.Nodes = append(p.blk.Nodes, n)
	return p.expectEOL()
}
