// Package termerr provides a static analyzer that detects discarded errors
// from query tree edits.
//
// Structural edits on a query.Term fail when applied to the wrong kind of
// node and leave the tree untouched. A caller that drops the error carries on
// with a tree it did not build. The analyzer flags cases where:
// 1. An edit is called as a statement and its error is ignored
// 2. The error result of an edit is assigned to the blank identifier
//
// Usage:
//
//	go run ./cmd/termerr ./...
package termerr

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is the termerr analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "termerr",
	Doc:      "detects discarded errors from query tree edits",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// checkedEdits are the Term methods whose error must be handled.
var checkedEdits = map[string]bool{
	"AddTerm":       true,
	"SwapTerms":     true,
	"RemoveLeft":    true,
	"RemoveRight":   true,
	"AddFilter":     true,
	"Load":          true,
	"UnmarshalJSON": true,
}

// queryPackage is the import path of the query tree package.
const queryPackage = "asdb_search/query"

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
		(*ast.GoStmt)(nil),
		(*ast.DeferStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		switch stmt := n.(type) {
		case *ast.ExprStmt:
			// t.SwapTerms()
			if call, ok := stmt.X.(*ast.CallExpr); ok {
				if name, ok := editName(pass, call); ok {
					pass.Reportf(call.Pos(), "error from %s is not checked", name)
				}
			}

		case *ast.GoStmt:
			if name, ok := editName(pass, stmt.Call); ok {
				pass.Reportf(stmt.Call.Pos(), "error from %s is not checked", name)
			}

		case *ast.DeferStmt:
			if name, ok := editName(pass, stmt.Call); ok {
				pass.Reportf(stmt.Call.Pos(), "error from %s is not checked", name)
			}

		case *ast.AssignStmt:
			// _ = t.SwapTerms()
			if len(stmt.Rhs) != len(stmt.Lhs) {
				return
			}
			for i, rhs := range stmt.Rhs {
				call, ok := rhs.(*ast.CallExpr)
				if !ok {
					continue
				}
				name, ok := editName(pass, call)
				if !ok {
					continue
				}
				if ident, ok := stmt.Lhs[i].(*ast.Ident); ok && ident.Name == "_" {
					pass.Reportf(call.Pos(), "error from %s is discarded", name)
				}
			}
		}
	})

	return nil, nil
}

// editName returns "Term.<method>" when call is a checked edit on a query.Term.
func editName(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || !checkedEdits[fn.Name()] {
		return "", false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return "", false
	}
	named := receiverNamed(sig.Recv().Type())
	if named == nil {
		return "", false
	}
	obj := named.Obj()
	if obj.Name() != "Term" || obj.Pkg() == nil || !isQueryPackage(obj.Pkg().Path()) {
		return "", false
	}
	return "Term." + fn.Name(), true
}

// receiverNamed returns the named type behind a receiver, dereferencing pointers.
func receiverNamed(t types.Type) *types.Named {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, _ := t.(*types.Named)
	return named
}

func isQueryPackage(path string) bool {
	return path == queryPackage || strings.HasSuffix(path, "/"+queryPackage)
}
