package streamjson

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/jquent/streamjson/arena"
)

// Kind enumerates the JSON kinds a Value can hold. The set is closed:
// every consumer switches exhaustively over it.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int64
	Uint64
	Double
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Double:
		return "double"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// Value is one node of a JSON document tree. Exactly one kind is active
// at a time; accessors for any other kind fail with ErrTypeMismatch.
//
// String bytes and the storage of array elements and object members are
// allocated from the resource the tree was built with. A tree is valid
// only while that resource is: resetting or releasing the resource
// invalidates every Value built from it. That precondition is not
// runtime-checked.
//
// The zero Value is a null built on the default resource.
type Value struct {
	kind Kind
	res  arena.Resource
	b    bool
	i    int64
	u    uint64
	f    float64
	str  []byte
	arr  []Value
	obj  []Member
}

// Member is one key/value pair of an object. Insertion order is
// preserved; the data model itself permits duplicate keys.
type Member struct {
	key []byte
	val Value
}

// Key returns a copy of the member's key.
func (m *Member) Key() string { return string(m.key) }

// Value returns the member's value.
func (m *Member) Value() *Value { return &m.val }

func orDefault(res arena.Resource) arena.Resource {
	if res == nil {
		return arena.Default()
	}
	return res
}

// NewNull returns a null value. A nil res means the default resource, as
// for all builders.
func NewNull(res arena.Resource) Value {
	return Value{kind: Null, res: orDefault(res)}
}

// NewBool returns a boolean value.
func NewBool(res arena.Resource, b bool) Value {
	return Value{kind: Bool, res: orDefault(res), b: b}
}

// NewInt64 returns a signed integer value.
func NewInt64(res arena.Resource, i int64) Value {
	return Value{kind: Int64, res: orDefault(res), i: i}
}

// NewUint64 returns an unsigned integer value.
func NewUint64(res arena.Resource, u uint64) Value {
	return Value{kind: Uint64, res: orDefault(res), u: u}
}

// NewDouble returns a floating point value.
func NewDouble(res arena.Resource, f float64) Value {
	return Value{kind: Double, res: orDefault(res), f: f}
}

// NewString returns a string value whose bytes are copied into res.
func NewString(res arena.Resource, s string) (Value, error) {
	res = orDefault(res)
	b, err := res.Allocate(len(s), 1)
	if err != nil {
		return Value{}, err
	}
	copy(b, s)
	return Value{kind: String, res: res, str: b}, nil
}

// newStringCopy is NewString over raw bytes; the parser feeds it scanner
// scratch that must not be retained.
func newStringCopy(res arena.Resource, src []byte) (Value, error) {
	b, err := copyBytes(res, src)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: String, res: res, str: b}, nil
}

func copyBytes(res arena.Resource, src []byte) ([]byte, error) {
	b, err := res.Allocate(len(src), 1)
	if err != nil {
		return nil, err
	}
	copy(b, src)
	return b, nil
}

// NewArray returns an empty array.
func NewArray(res arena.Resource) Value {
	return Value{kind: Array, res: orDefault(res)}
}

// NewObject returns an empty object.
func NewObject(res arena.Resource) Value {
	return Value{kind: Object, res: orDefault(res)}
}

// Kind reports the active kind.
func (v *Value) Kind() Kind { return v.kind }

// Resource returns the resource the value was built with.
func (v *Value) Resource() arena.Resource { return orDefault(v.res) }

func kindErr(want, got Kind) error {
	return errors.Wrapf(ErrTypeMismatch, "want %s, got %s", want, got)
}

// Bool returns the boolean payload.
func (v *Value) Bool() (bool, error) {
	if v.kind != Bool {
		return false, kindErr(Bool, v.kind)
	}
	return v.b, nil
}

// Int64 returns the signed integer payload.
func (v *Value) Int64() (int64, error) {
	if v.kind != Int64 {
		return 0, kindErr(Int64, v.kind)
	}
	return v.i, nil
}

// Uint64 returns the unsigned integer payload.
func (v *Value) Uint64() (uint64, error) {
	if v.kind != Uint64 {
		return 0, kindErr(Uint64, v.kind)
	}
	return v.u, nil
}

// Double returns the floating point payload.
func (v *Value) Double() (float64, error) {
	if v.kind != Double {
		return 0, kindErr(Double, v.kind)
	}
	return v.f, nil
}

// StringBytes returns the string payload without copying. The bytes are
// owned by the tree's resource.
func (v *Value) StringBytes() ([]byte, error) {
	if v.kind != String {
		return nil, kindErr(String, v.kind)
	}
	return v.str, nil
}

// Elems returns the elements of an array in insertion order.
func (v *Value) Elems() ([]Value, error) {
	if v.kind != Array {
		return nil, kindErr(Array, v.kind)
	}
	return v.arr, nil
}

// Members returns the members of an object in insertion order.
func (v *Value) Members() ([]Member, error) {
	if v.kind != Object {
		return nil, kindErr(Object, v.kind)
	}
	return v.obj, nil
}

// Field scans an object for the first member with the given key. It
// reports false for a missing key or a non-object value.
func (v *Value) Field(key string) (*Value, bool) {
	if v.kind != Object {
		return nil, false
	}
	for i := range v.obj {
		if string(v.obj[i].key) == key {
			return &v.obj[i].val, true
		}
	}
	return nil, false
}

// Len returns the number of children of an array or object, and 0 for
// every other kind.
func (v *Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Append adds elem to the array v. An elem built from a resource that is
// not equal to v's is first copied into v's resource, so one arena keeps
// owning the whole tree.
func (v *Value) Append(elem Value) error {
	if v.kind != Array {
		return errors.Wrapf(ErrTypeMismatch, "append to %s", v.kind)
	}
	elem, err := v.adopt(elem)
	if err != nil {
		return err
	}
	if len(v.arr) == cap(v.arr) {
		if err := v.growArr(); err != nil {
			return err
		}
	}
	v.arr = v.arr[:len(v.arr)+1]
	v.arr[len(v.arr)-1] = elem
	return nil
}

// AppendMember adds a key/value pair to the object v without looking at
// existing keys. Resource adoption works as in Append.
func (v *Value) AppendMember(key string, elem Value) error {
	if v.kind != Object {
		return errors.Wrapf(ErrTypeMismatch, "append member to %s", v.kind)
	}
	elem, err := v.adopt(elem)
	if err != nil {
		return err
	}
	kb, err := copyBytes(v.Resource(), []byte(key))
	if err != nil {
		return err
	}
	return v.appendMemberOwned(kb, elem)
}

// setMember implements the parser's last-value-wins duplicate key policy:
// an equal key keeps its original position and spelling but takes the new
// value.
func (v *Value) setMember(key []byte, elem Value) error {
	for i := range v.obj {
		if bytes.Equal(v.obj[i].key, key) {
			v.obj[i].val = elem
			return nil
		}
	}
	return v.appendMemberOwned(key, elem)
}

// appendMemberOwned takes key bytes already allocated from v's resource.
func (v *Value) appendMemberOwned(key []byte, elem Value) error {
	if len(v.obj) == cap(v.obj) {
		if err := v.growObj(); err != nil {
			return err
		}
	}
	v.obj = v.obj[:len(v.obj)+1]
	v.obj[len(v.obj)-1] = Member{key: key, val: elem}
	return nil
}

// adopt migrates elem into v's resource when the two are not equal.
func (v *Value) adopt(elem Value) (Value, error) {
	res := v.Resource()
	if elem.res == nil || res.IsEqual(elem.res) {
		return elem, nil
	}
	return cloneInto(res, &elem)
}

func (v *Value) growArr() error {
	n := cap(v.arr) * 2
	if n == 0 {
		n = 4
	}
	ns, err := arena.MakeSlice[Value](v.Resource(), n)
	if err != nil {
		return err
	}
	copy(ns, v.arr)
	old := v.arr
	v.arr = ns[:len(v.arr)]
	arena.FreeSlice(v.Resource(), old)
	return nil
}

func (v *Value) growObj() error {
	n := cap(v.obj) * 2
	if n == 0 {
		n = 4
	}
	ns, err := arena.MakeSlice[Member](v.Resource(), n)
	if err != nil {
		return err
	}
	copy(ns, v.obj)
	old := v.obj
	v.obj = ns[:len(v.obj)]
	arena.FreeSlice(v.Resource(), old)
	return nil
}

// cloneInto deep-copies v so that every allocation comes from res.
func cloneInto(res arena.Resource, v *Value) (Value, error) {
	switch v.kind {
	case String:
		return newStringCopy(res, v.str)
	case Array:
		out := NewArray(res)
		for i := range v.arr {
			c, err := cloneInto(res, &v.arr[i])
			if err != nil {
				return Value{}, err
			}
			if err := out.Append(c); err != nil {
				return Value{}, err
			}
		}
		return out, nil
	case Object:
		out := NewObject(res)
		for i := range v.obj {
			c, err := cloneInto(res, &v.obj[i].val)
			if err != nil {
				return Value{}, err
			}
			kb, err := copyBytes(res, v.obj[i].key)
			if err != nil {
				return Value{}, err
			}
			if err := out.appendMemberOwned(kb, c); err != nil {
				return Value{}, err
			}
		}
		return out, nil
	default:
		c := *v
		c.res = res
		return c, nil
	}
}

// Equal reports structural equality: same kinds, same payloads, same
// order of children. Resources do not take part in the comparison.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Int64:
		return a.i == b.i
	case Uint64:
		return a.u == b.u
	case Double:
		return a.f == b.f
	case String:
		return bytes.Equal(a.str, b.str)
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(&a.arr[i], &b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if !bytes.Equal(a.obj[i].key, b.obj[i].key) ||
				!Equal(&a.obj[i].val, &b.obj[i].val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
