/*
Package streamjson parses JSON incrementally into a mutable value tree
whose nodes are allocated from a pluggable memory arena, and renders such
trees back to text.

A Parser accepts input in chunks of any size through the
Start/Write/Finish/Release lifecycle and materializes a Value owned by an
arena.Resource. Values created without an explicit resource use
arena.Default(), which lives for the whole process. WriteIndent renders a
tree as indented text; Value.String gives the compact form.
*/
package streamjson // import "github.com/jquent/streamjson"
