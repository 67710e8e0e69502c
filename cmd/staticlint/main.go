// Команда staticlint собирает multichecker для проверки репозитория.
//
// В набор входят:
//   - анализаторы go/analysis/passes: printf, shadow, structtag, nilness,
//     fieldalignment, unusedresult, errorsas, httpresponse, lostcancel;
//   - все SA-анализаторы staticcheck;
//   - S1000 (упрощение select с одним case) и U1000 (неиспользуемый код);
//   - bodyclose (незакрытое тело http.Response);
//   - noexit: прямой os.Exit в main.main.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/shortlinks/cmd/staticlint/noexit"
)

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		unusedresult.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		bodyclose.Analyzer,
		noexit.Analyzer,
	}

	list = append(list, pick(staticcheck.Analyzers, func(name string) bool {
		return strings.HasPrefix(name, "SA")
	})...)
	list = append(list, pick(simple.Analyzers, func(name string) bool {
		return name == "S1000"
	})...)
	list = append(list, unused.Analyzer.Analyzer)
	return list
}

func pick(from []*lint.Analyzer, keep func(name string) bool) []*analysis.Analyzer {
	var out []*analysis.Analyzer
	for _, a := range from {
		if keep(a.Analyzer.Name) {
			out = append(out, a.Analyzer)
		}
	}
	return out
}
