package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

const maxFuzzInput = 1 << 16 // 64 KiB

// inlineSeeds covers the grammar corners that testdata files rarely hit.
var inlineSeeds = []string{
	"",
	"ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\nENDSEC;\nEND-ISO-10303-21;\n",
	"ISO-10303-21;\nDATA;\n#1=A((((((((1))))))));\nENDSEC;\nEND-ISO-10303-21;\n",
	"ISO-10303-21;\nDATA;\n#1=(A() B(1.,'x') C(.T.));\nENDSEC;\nEND-ISO-10303-21;\n",
	"ISO-10303-21;\nDATA;\n#1=A('it''s; (tricky)',\"0FF\",$,*,#2);\nENDSEC;\n",
	"ISO-10303-21;\nDATA;\n#1=A('\\X2\\00C4\\X0\\ \\S\\D \\X\\E9');\nENDSEC;\nEND-ISO-10303-21;\n",
	"ISO-10303-21;\nDATA;\n#1=A(LENGTH_MEASURE(2.5),(1.E-3,-4));\n/* unterminated",
	"ISO-10303-21;\nDATA;\n#1=A('unterminated);\nENDSEC;\n",
	"ISO-10303-21;\nANCHOR;\n<a>=#1;\nENDSEC;\nSIGNATURE;\nxyz\nENDSEC;\nEND-ISO-10303-21;\n",
	"#1=A(#1);#1=B();",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все STEP файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".stp", ".step", ".p21":
		default:
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

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
