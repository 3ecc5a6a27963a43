package streamjson

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jquent/streamjson/arena"
)

func mustParse(t *testing.T, src string) *Value {
	t.Helper()
	v, err := Parse([]byte(src), nil)
	require.NoError(t, err, "input %q", src)
	return v
}

func TestParserDocuments(t *testing.T) {
	tests := []struct {
		have string
		want string // compact rendering
	}{
		{`null`, `null`},
		{`true`, `true`},
		{`false`, `false`},
		{`0`, `0`},
		{`"hi"`, `"hi"`},
		{`""`, `""`},
		{`[]`, `[]`},
		{`{}`, `{}`},
		{` { "a" : 20 , "b" : [ true , null ] } `, `{"a":20,"b":[true,null]}`},
		{`{"a":{},"b":[],"c":null,"d":0,"e":""}`, `{"a":{},"b":[],"c":null,"d":0,"e":""}`},
		{`[[[[0]]]]`, `[[[[0]]]]`},
		{`[false, -31.25, 5, "ab\"cd"]`, `[false,-31.25,5,"ab\"cd"]`},
		{`{"nested":{"deep":[1,2,{"x":"y"}]}}`, `{"nested":{"deep":[1,2,{"x":"y"}]}}`},
		{"\t[\n1,\r\n2\n]\n", `[1,2]`},
	}
	for _, test := range tests {
		v := mustParse(t, test.have)
		require.Equal(t, test.want, v.String(), "input %q", test.have)
	}
}

func TestParserNumberKinds(t *testing.T) {
	tests := []struct {
		have string
		want Value
	}{
		{`0`, NewUint64(nil, 0)},
		{`5`, NewUint64(nil, 5)},
		{`18446744073709551615`, NewUint64(nil, 18446744073709551615)},
		{`-5`, NewInt64(nil, -5)},
		{`-9223372036854775808`, NewInt64(nil, -9223372036854775808)},
		{`2.5`, NewDouble(nil, 2.5)},
		{`-0.125`, NewDouble(nil, -0.125)},
		{`1e3`, NewDouble(nil, 1000)},
		{`3.125e-4`, NewDouble(nil, 3.125e-4)},
		{`18446744073709551616`, NewDouble(nil, 18446744073709551616)},
		{`-9223372036854775809`, NewDouble(nil, -9223372036854775809)},
	}
	for _, test := range tests {
		v := mustParse(t, test.have)
		require.True(t, Equal(v, &test.want), "input %q: got %s %s", test.have, v.Kind(), v)
	}
}

func TestParserStrings(t *testing.T) {
	tests := []struct {
		have string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\"b"`, `a"b`},
		{`"back\\slash"`, `back\slash`},
		{`"sol\/idus"`, "sol/idus"},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"Aé"`, "Aé"},
		{`"😀"`, "\U0001f600"},
		{`"héllo"`, "héllo"},
	}
	for _, test := range tests {
		v := mustParse(t, test.have)
		b, err := v.StringBytes()
		require.NoError(t, err)
		require.Equal(t, test.want, string(b), "input %q", test.have)
	}
}

func TestParserSyntaxErrors(t *testing.T) {
	tests := []string{
		`{"a":}`,
		`{"a" 1}`,
		`{"a":1,}`,
		`{1:2}`,
		`{`,
		`[1,]`,
		`[1 2]`,
		`[`,
		`]`,
		`,`,
		`tru`,
		`truth`,
		`nul`,
		`01`,
		`1.`,
		`1.2.3`,
		`-`,
		`1e`,
		`"abc`,
		`"a\x"`,
		`"\ud800"`,
		`"\udc00\ud800"`,
		`"\u00g0"`,
		"\"a\x01b\"",
		"\"\xff\"",
		`1e999`,
		``,
		`   `,
	}
	for _, test := range tests {
		p := NewParser(nil)
		p.Start()
		_, err := p.Write([]byte(test))
		if err == nil {
			err = p.Finish()
		}
		require.Error(t, err, "input %q", test)
		require.Equal(t, Failed, p.State(), "input %q", test)

		var serr *SyntaxError
		require.ErrorAs(t, err, &serr, "input %q", test)
		require.GreaterOrEqual(t, serr.Offset, 0)
		require.LessOrEqual(t, serr.Offset, len(test))

		_, err = p.Release()
		require.ErrorIs(t, err, ErrInvalidState, "input %q", test)
	}
}

func TestParserErrorOffset(t *testing.T) {
	p := NewParser(nil)
	p.Start()
	_, err := p.Write([]byte(`{"a":}`))
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 5, serr.Offset)
}

func TestParserChunking(t *testing.T) {
	docs := []string{
		`{"a":1,"b":[true,null,2.5]}`,
		`"spl\u0041t 😀 esc\napes"`,
		`"\ud83d\ude00"`,
		`[-31.25,1e3,18446744073709551615]`,
		`{"deep":{"er":[[],{},[{"x":null}]]}}`,
		`123`,
		`true`,
	}
	for _, doc := range docs {
		want := mustParse(t, doc)

		// one byte at a time
		p := NewParser(nil)
		p.Start()
		for i := 0; i < len(doc); i++ {
			_, err := p.Write([]byte{doc[i]})
			require.NoError(t, err, "doc %q byte %d", doc, i)
		}
		require.NoError(t, p.Finish(), "doc %q", doc)
		got, err := p.Release()
		require.NoError(t, err)
		require.True(t, Equal(got, want), "doc %q bytewise: got %s", doc, got)

		// every two-way split
		for i := 1; i < len(doc); i++ {
			p := NewParser(nil)
			p.Start()
			_, err := p.Write([]byte(doc[:i]))
			require.NoError(t, err, "doc %q split %d", doc, i)
			_, err = p.Write([]byte(doc[i:]))
			require.NoError(t, err, "doc %q split %d", doc, i)
			require.NoError(t, p.Finish(), "doc %q split %d", doc, i)
			got, err := p.Release()
			require.NoError(t, err)
			require.True(t, Equal(got, want), "doc %q split %d", doc, i)
		}
	}
}

func TestParserShortWrite(t *testing.T) {
	p := NewParser(nil)
	p.Start()
	n, err := p.Write([]byte(`123xyz`))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, p.Finish())
	v, err := p.Release()
	require.NoError(t, err)
	u, err := v.Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(123), u)

	p.Start()
	n, err = p.Write([]byte(`{"a":1} trailing`))
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestParserFinishFlushesNumber(t *testing.T) {
	p := NewParser(nil)
	p.Start()
	_, err := p.Write([]byte("12"))
	require.NoError(t, err)
	_, err = p.Write([]byte("3"))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	v, err := p.Release()
	require.NoError(t, err)
	require.Equal(t, "123", v.String())
}

func TestParserDuplicateKeys(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":2,"a":3}`)
	require.Equal(t, 2, v.Len())
	require.Equal(t, `{"a":3,"b":2}`, v.String())
}

func TestParserDepthLimit(t *testing.T) {
	p := NewParser(nil)
	p.MaxDepth = 3
	p.Start()
	_, err := p.Write([]byte("[[[["))
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 3, serr.Offset)
	require.Equal(t, Failed, p.State())

	p.Start()
	_, err = p.Write([]byte("[[[0]]]"))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
}

func TestParserStateMachine(t *testing.T) {
	p := NewParser(nil)
	require.Equal(t, Ready, p.State())

	_, err := p.Write([]byte("1"))
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, p.Finish(), ErrInvalidState)
	_, err = p.Release()
	require.ErrorIs(t, err, ErrInvalidState)

	p.Start()
	require.Equal(t, InProgress, p.State())
	_, err = p.Release()
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = p.Write([]byte("[1]"))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	require.Equal(t, Complete, p.State())

	_, err = p.Write([]byte("x"))
	require.ErrorIs(t, err, ErrInvalidState)

	v, err := p.Release()
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, Ready, p.State())

	// a failed parser stays failed until Start
	p.Start()
	_, err = p.Write([]byte("}"))
	require.Error(t, err)
	require.Equal(t, Failed, p.State())
	require.Equal(t, err, p.Err())
	_, err = p.Write([]byte("1"))
	require.ErrorIs(t, err, ErrInvalidState)
	p.Start()
	_, err = p.Write([]byte("1"))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
}

func TestParserFailureLocality(t *testing.T) {
	good := `{"a":1,"b":[true,null,2.5]}`
	for _, corrupt := range []struct {
		at int
		b  byte
	}{
		{4, '#'},  // colon
		{6, ';'},  // comma between members
		{12, 'x'}, // first byte of 'true'
		{21, '!'}, // comma between elements
	} {
		doc := []byte(good)
		doc[corrupt.at] = corrupt.b
		p := NewParser(nil)
		p.Start()
		_, err := p.Write(doc)
		if err == nil {
			err = p.Finish()
		}
		require.Error(t, err, "corrupt byte %q at %d", corrupt.b, corrupt.at)
		require.Equal(t, Failed, p.State())
	}
}

func TestParserArenaExhaustion(t *testing.T) {
	res := arena.NewMonotonic(64).WithLimit(48)
	p := NewParser(res)
	p.Start()
	_, err := p.Write([]byte(`["this string alone is longer than the whole budget allows"]`))
	if err == nil {
		err = p.Finish()
	}
	require.ErrorIs(t, err, arena.ErrOutOfMemory)
	require.Equal(t, Failed, p.State())
}

func TestParserMonotonicBacked(t *testing.T) {
	res := arena.NewMonotonic(256)
	p := NewParser(res)
	p.Start()
	doc := `{"name":"stream","tags":["a","b","c","d","e"],"count":42}`
	_, err := p.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	v, err := p.Release()
	require.NoError(t, err)
	require.Equal(t, `{"name":"stream","tags":["a","b","c","d","e"],"count":42}`, v.String())
	require.True(t, v.Resource().IsEqual(res))
	require.Greater(t, res.Allocated(), 0)

	// the tree dies with its arena; the parser is reusable right away
	res.Reset()
	p.Start()
	_, err = p.Write([]byte(`[1]`))
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	_, err = p.Release()
	require.NoError(t, err)
}
