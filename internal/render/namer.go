package render

import (
	"go/ast"
	"go/parser"
	"go/token"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/astutil"

	"debugctx/internal/logging"
	"debugctx/internal/stackframe"
)

// ArgumentNamer names the parameters of the routine executing in a frame.
// A nil or short result falls back to positional names.
type ArgumentNamer interface {
	ArgumentNames(frame stackframe.Frame) []string
}

// PositionalNamer never knows parameter names.
type PositionalNamer struct{}

// ArgumentNames implements ArgumentNamer.
func (PositionalNamer) ArgumentNames(stackframe.Frame) []string { return nil }

// SourceNamer reads parameter names from the frame's source file. Parsed
// files are cached, including the ones that failed to parse.
type SourceNamer struct {
	mu    sync.Mutex
	files map[string]*parsedFile
}

type parsedFile struct {
	fset *token.FileSet
	file *ast.File
}

// NewSourceNamer creates a SourceNamer with an empty cache.
func NewSourceNamer() *SourceNamer {
	return &SourceNamer{files: make(map[string]*parsedFile)}
}

// ArgumentNames implements ArgumentNamer. The frame's line is a position
// inside the routine, so the innermost function enclosing it is the one
// being called.
func (n *SourceNamer) ArgumentNames(frame stackframe.Frame) []string {
	if !frame.HasLocation() || frame.Line <= 0 {
		return nil
	}
	pf := n.parse(frame.File)
	if pf == nil {
		return nil
	}

	tf := pf.fset.File(pf.file.Pos())
	if tf == nil || frame.Line > tf.LineCount() {
		return nil
	}
	pos := tf.LineStart(frame.Line)

	path, _ := astutil.PathEnclosingInterval(pf.file, pos, pos)
	for _, node := range path {
		switch fn := node.(type) {
		case *ast.FuncLit:
			return paramNames(fn.Type)
		case *ast.FuncDecl:
			return paramNames(fn.Type)
		}
	}
	return nil
}

func (n *SourceNamer) parse(file string) *parsedFile {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.files == nil {
		n.files = make(map[string]*parsedFile)
	}
	if pf, ok := n.files[file]; ok {
		return pf
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	var pf *parsedFile
	if err != nil {
		logging.Get(logging.CategoryRender).Debug("cannot parse source for argument names",
			zap.String("file", file), zap.Error(err))
	} else {
		pf = &parsedFile{fset: fset, file: f}
	}
	n.files[file] = pf
	return pf
}

func paramNames(ft *ast.FuncType) []string {
	if ft == nil || ft.Params == nil {
		return nil
	}
	var names []string
	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			names = append(names, "")
			continue
		}
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}
	return names
}
