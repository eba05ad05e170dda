package minilox_test

import (
	"path/filepath"
	"testing"

	"github.com/podhmo/minilox/loxtest"
)

func TestScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.lox"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scripts found")
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			loxtest.RunScript(t, path)
		})
	}
}
