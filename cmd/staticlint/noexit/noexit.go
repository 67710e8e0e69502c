// Package noexit запрещает прямой вызов os.Exit в функции main пакета main.
// Вызов распознаётся по объекту функции, поэтому импорт под псевдонимом
// не помогает его спрятать.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer анализатор noexit.
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "reports direct os.Exit calls in func main of package main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Nodes([]ast.Node{(*ast.FuncDecl)(nil), (*ast.CallExpr)(nil)}, func(n ast.Node, push bool) bool {
		if !push {
			return true
		}
		switch n := n.(type) {
		case *ast.FuncDecl:
			// спускаемся только в func main без получателя
			return n.Recv == nil && n.Name.Name == "main" && n.Body != nil
		case *ast.CallExpr:
			if isOSExit(pass.TypesInfo, n) {
				pass.Reportf(n.Pos(), "direct os.Exit call in main.main")
			}
		}
		return true
	})
	return nil, nil
}

func isOSExit(info *types.Info, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
