package streamjson

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jquent/streamjson/arena"
)

// State is the lifecycle position of a Parser.
type State uint8

const (
	Ready State = iota
	InProgress
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case InProgress:
		return "InProgress"
	case Complete:
		return "Complete"
	case Failed:
		return "Failed"
	default:
		return "invalid"
	}
}

// DefaultMaxDepth bounds object/array nesting when Parser.MaxDepth is 0.
const DefaultMaxDepth = 512

// Parser builds a Value tree from JSON given in arbitrary chunks. The
// caller drives it through Start, any number of Write calls, Finish and
// Release; a grammar violation at any point moves it to Failed, and only
// Start revives it from there.
//
// Duplicate object keys resolve last-value-wins: the member keeps the
// position of its first occurrence and the value of its last.
//
// A Parser is not synchronized; one document is one goroutine's work.
type Parser struct {
	// MaxDepth bounds object/array nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	res     arena.Resource
	state   State
	sc      scanner
	step    parseFunc
	stack   []frame
	root    Value
	docDone bool
	err     error
}

// frame is one composite value under construction. fresh marks a frame
// whose opening bracket has not been followed by any content yet, which
// is the only position where the closing bracket may come immediately.
type frame struct {
	val   Value
	key   []byte
	fresh bool
}

type parseFunc func(*Parser, token) (parseFunc, error)

// NewParser returns a parser in the Ready state allocating from res, or
// from the default resource when res is nil.
func NewParser(res arena.Resource) *Parser {
	if res == nil {
		res = arena.Default()
	}
	p := &Parser{res: res}
	p.sc.reset()
	return p
}

// State reports the parser's lifecycle position.
func (p *Parser) State() State { return p.state }

// Err returns the error that moved the parser to Failed, if any.
func (p *Parser) Err() error { return p.err }

// Start begins a new document, discarding any partial state from a
// previous parse.
func (p *Parser) Start() {
	p.sc.reset()
	p.step = parseValue
	p.stack = p.stack[:0]
	p.root = Value{}
	p.docDone = false
	p.err = nil
	p.state = InProgress
}

// Write feeds one chunk. It returns how many bytes were consumed; a
// count short of len(chunk) means the top-level value is syntactically
// complete and the remaining bytes belong to the caller. The chunk
// boundary may fall anywhere, no byte ever has to be re-supplied.
func (p *Parser) Write(chunk []byte) (int, error) {
	if p.state != InProgress {
		return 0, errors.Wrapf(ErrInvalidState, "write in state %s", p.state)
	}
	i := 0
	for i < len(chunk) {
		if p.docDone {
			break
		}
		tok, emitted, consumed, err := p.sc.step(chunk[i])
		if err != nil {
			return i, p.fail(err)
		}
		if emitted {
			if err := p.push(tok); err != nil {
				return i, p.fail(err)
			}
		}
		if consumed {
			i++
		}
	}
	return i, nil
}

// Finish declares end of input. It succeeds only when the bytes written
// so far form exactly one complete JSON value.
func (p *Parser) Finish() error {
	if p.state != InProgress {
		return errors.Wrapf(ErrInvalidState, "finish in state %s", p.state)
	}
	tok, emitted, err := p.sc.flush()
	if err != nil {
		return p.fail(err)
	}
	if emitted {
		if err := p.push(tok); err != nil {
			return p.fail(err)
		}
	}
	if !p.docDone {
		return p.fail(syntaxErrf(p.sc.off, "unexpected end of input"))
	}
	p.state = Complete
	return nil
}

// Release transfers ownership of the built tree to the caller and resets
// the parser to Ready. It is valid only in the Complete state.
func (p *Parser) Release() (*Value, error) {
	if p.state != Complete {
		return nil, errors.Wrapf(ErrInvalidState, "release in state %s", p.state)
	}
	v := p.root
	p.root = Value{}
	p.state = Ready
	return &v, nil
}

func (p *Parser) fail(err error) error {
	p.state = Failed
	p.err = err
	return err
}

func (p *Parser) push(t token) error {
	next, err := p.step(p, t)
	if err != nil {
		return err
	}
	p.step = next
	return nil
}

func (p *Parser) maxDepth() int {
	if p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return DefaultMaxDepth
}

func (p *Parser) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// attach hands a completed value to the innermost open composite, or
// makes it the document root when none is open.
func (p *Parser) attach(v Value) (parseFunc, error) {
	if len(p.stack) == 0 {
		p.root = v
		p.docDone = true
		return parseEnd, nil
	}
	f := p.top()
	f.fresh = false
	if f.val.kind == Array {
		if err := f.val.Append(v); err != nil {
			return nil, err
		}
	} else {
		if err := f.val.setMember(f.key, v); err != nil {
			return nil, err
		}
		f.key = nil
	}
	return parseDelim, nil
}

func (p *Parser) closeFrame() (parseFunc, error) {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return p.attach(f.val)
}

func parseValue(p *Parser, t token) (parseFunc, error) {
	switch t.kind {
	case tkNull:
		return p.attach(NewNull(p.res))
	case tkTrue:
		return p.attach(NewBool(p.res, true))
	case tkFalse:
		return p.attach(NewBool(p.res, false))
	case tkNumber:
		v, err := p.number(t)
		if err != nil {
			return nil, err
		}
		return p.attach(v)
	case tkString:
		v, err := newStringCopy(p.res, t.text)
		if err != nil {
			return nil, err
		}
		return p.attach(v)
	case tkArrayOpen:
		if len(p.stack) >= p.maxDepth() {
			return nil, syntaxErrf(t.off, "nesting deeper than %d", p.maxDepth())
		}
		p.stack = append(p.stack, frame{val: NewArray(p.res), fresh: true})
		return parseValue, nil
	case tkObjectOpen:
		if len(p.stack) >= p.maxDepth() {
			return nil, syntaxErrf(t.off, "nesting deeper than %d", p.maxDepth())
		}
		p.stack = append(p.stack, frame{val: NewObject(p.res), fresh: true})
		return parseKey, nil
	case tkArrayClose:
		if f := p.top(); f != nil && f.val.kind == Array && f.fresh {
			return p.closeFrame()
		}
	}
	return nil, syntaxErrf(t.off, "expected a value, got %s", t.describe())
}

func parseKey(p *Parser, t token) (parseFunc, error) {
	f := p.top()
	switch t.kind {
	case tkString:
		key, err := copyBytes(p.res, t.text)
		if err != nil {
			return nil, err
		}
		f.key = key
		f.fresh = false
		return parseColon, nil
	case tkObjectClose:
		if f.fresh {
			return p.closeFrame()
		}
	}
	return nil, syntaxErrf(t.off, "expected object key, got %s", t.describe())
}

func parseColon(p *Parser, t token) (parseFunc, error) {
	if t.kind != tkColon {
		return nil, syntaxErrf(t.off, "expected ':' after object key, got %s", t.describe())
	}
	return parseValue, nil
}

func parseDelim(p *Parser, t token) (parseFunc, error) {
	f := p.top()
	switch t.kind {
	case tkComma:
		if f.val.kind == Array {
			return parseValue, nil
		}
		return parseKey, nil
	case tkArrayClose:
		if f.val.kind == Array {
			return p.closeFrame()
		}
	case tkObjectClose:
		if f.val.kind == Object {
			return p.closeFrame()
		}
	}
	return nil, syntaxErrf(t.off, "expected ',' or a closing bracket, got %s", t.describe())
}

// parseEnd is the accepting state; Write stops feeding tokens once the
// document is done, so reaching it with another token is trailing data.
func parseEnd(p *Parser, t token) (parseFunc, error) {
	return nil, syntaxErrf(t.off, "unexpected %s after top-level value", t.describe())
}

var numberRe = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// number classifies a number token: non-negative integers that fit become
// Uint64, negative ones that fit become Int64, everything else (fraction,
// exponent, overflow) becomes Double.
func (p *Parser) number(t token) (Value, error) {
	text := string(t.text)
	if !numberRe.MatchString(text) {
		return Value{}, syntaxErrf(t.off, "invalid number %q", text)
	}
	if !strings.ContainsAny(text, ".eE") {
		if text[0] == '-' {
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				return NewInt64(p.res, i), nil
			}
		} else if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return NewUint64(p.res, u), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, syntaxErrf(t.off, "number %q out of range", text)
	}
	return NewDouble(p.res, f), nil
}
