package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(zerolog.New(&buf))

	l.Info("batch sent",
		String("id", "01H"),
		Int("records", 3),
		Int64("bytes", 42),
		Duration("took", 2*time.Second),
		Err(errors.New("boom")),
		Any("tags", []string{"a"}),
	)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "batch sent", got["message"])
	assert.Equal(t, "01H", got["id"])
	assert.EqualValues(t, 3, got["records"])
	assert.EqualValues(t, 42, got["bytes"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, []any{"a"}, got["tags"])
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoop(t *testing.T) {
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", Err(errors.New("ignored")))
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(zerolog.New(&buf))

	for level, logf := range map[string]func(string, ...Field){
		"debug": l.Debug,
		"info":  l.Info,
		"warn":  l.Warn,
		"error": l.Error,
	} {
		buf.Reset()
		logf("msg")
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, level, got["level"])
	}
}

// The Logger methods are the package's public surface; keep them documented.
func TestLoggerMethodsDocumented(t *testing.T) {
	fset := token.NewFileSet()
	for _, file := range []string{"logger.go", "zerolog.go"} {
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		require.NoError(t, err)

		ast.Inspect(f, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				if n.Recv != nil && n.Name.IsExported() {
					assert.NotNil(t, n.Doc, "%s: method %s has no doc comment", file, n.Name.Name)
				}
			case *ast.InterfaceType:
				for _, m := range n.Methods.List {
					assert.NotNil(t, m.Doc, "%s: interface method %s has no doc comment", file, m.Names[0].Name)
				}
			}
			return true
		})
	}
}
