// Package lex implements a small rune-level state machine lexer.
//
// Clients provide an initial StateFn; a state consumes runes with Next,
// AcceptWhile and Backup, emits items with Emit, and returns the next state
// (nil returns control to the initial state at a token boundary).
package lex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// EOF is returned by Next at end of input. It is an untyped constant so
// that clients can also use it as the item Type of end-of-input items.
const EOF = -1

// Pos is a rune offset within the input.
type Pos int

// Type identifies the type of an Item. Values other than EOF are defined
// by the client.
type Type int

// An Item is a token emitted by the lexer.
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	switch v := i.Value.(type) {
	case string:
		return v
	case rune:
		return strconv.QuoteRune(v)
	case int:
		return strconv.Itoa(v)
	}
	return fmt.Sprint(i.Value)
}

// A StateFn lexes some portion of the input and returns the next state,
// or nil to return to the initial state.
type StateFn func(l *Lexer) StateFn

// Interface is the lexer's client-facing side.
type Interface interface {
	Lex() Item
}

// Lexer runs a state machine over a rune stream.
type Lexer struct {
	r      *bufio.Reader
	init   StateFn
	state  StateFn
	items  []Item
	cur    rune
	pos    Pos // position of cur
	npos   Pos // position of the next rune
	start  Pos // position of the current token's first rune
	backed bool
	armed  bool // next Next() starts a new token
}

// New returns a new Lexer reading from r with init as its initial state.
func New(r io.Reader, init StateFn) *Lexer {
	return &Lexer{r: bufio.NewReader(r), init: init, state: init, armed: true}
}

// Lex runs the state machine until an item is available and returns it.
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if next := l.state(l); next != nil {
			l.state = next
		} else {
			l.state = l.init
			l.armed = true
		}
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input, or EOF.
func (l *Lexer) Next() rune {
	if l.backed {
		l.backed = false
	} else {
		r, _, err := l.r.ReadRune()
		if err != nil {
			l.cur = EOF
			l.pos = l.npos
		} else {
			l.cur = r
			l.pos = l.npos
			l.npos++
		}
	}
	if l.armed {
		l.start = l.pos
		l.armed = false
	}
	return l.cur
}

// Current returns the last rune returned by Next.
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup un-reads the current rune. Only one rune can be backed up.
func (l *Lexer) Backup() {
	l.backed = true
}

// AcceptWhile consumes runes as long as p returns true. The first rejected
// rune is backed up.
func (l *Lexer) AcceptWhile(p func(r rune) bool) {
	for r := l.Next(); r != EOF && p(r); r = l.Next() {
	}
	l.Backup()
}

// Emit queues an item of the given type and value. The item's position is
// that of the first rune consumed since the previous token boundary.
func (l *Lexer) Emit(t Type, value interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: value})
	l.armed = true
}
