package semantic

import (
	_ "embed"
	"math"
	"sync"

	"codefix/internal/parser"
	"codefix/internal/source"
)

// corlibSource declares the part of the .NET core library the binder knows.
// It is parsed and declared once; member bodies are never bound.
//
//go:embed corlib.cs
var corlibSource string

// corlibFile is the FileID reserved for the core library.
const corlibFile source.FileID = math.MaxUint32

var coreLibrary = sync.OnceValue(func() *table {
	res := parser.ParseText(corlibFile, "corlib.cs", corlibSource, parser.Options{})
	tbl := newTable(true)
	m := newModel(res.Tree, env{tbl})
	b := newBinder(m, tbl, nil)
	b.declareUnit(res.Tree.Root())
	return tbl
})
