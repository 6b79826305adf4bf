package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

// snippetSeeds are fragments the parser recovers from; each once tripped a
// recovery path.
var snippetSeeds = []string{
	"",
	"class C { void M() { int x = 1 } }",
	"class C { @@ }",
	"}",
	"class C { void M() { /* unterminated",
	"class C { int M() => a >> 2 + b << 1; }",
	"#if DEBUG\nclass A {}\n",
	"class C { void M() { x?.y?.z(); } }",
	"enum E { A = , B }",
	"class C { bool M(bool b) => b == ; }",
	"class C<T : I { }",
	"namespace N; namespace M;",
	"class C { string s = $\"{\"; }",
	"class C { char c = ''; }",
	"[Flags enum E { A }",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range snippetSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.cs файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".cs" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
