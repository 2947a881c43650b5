// Command staticlint runs the project's static analysis suite: a set of
// go/analysis passes from x/tools, third-party analyzers, staticcheck checks
// and the project-specific noosexit analyzer, combined with multichecker.
//
// The staticcheck part is selected by a JSON file named staticlint.json next
// to the binary (or in the working directory):
//
//	{"checks": ["SA*", "S1000", "ST1005"]}
//
// A trailing "*" enables a whole group. Without the file every SA check runs.
package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/patric-chuzhbe/userapp/cmd/staticlint/noosexit"
)

const configFileName = "staticlint.json"

type lintConfig struct {
	Checks []string `json:"checks"`
}

var defaultLintConfig = lintConfig{Checks: []string{"SA*"}}

func loadConfig() (lintConfig, error) {
	candidates := []string{configFileName}
	if executable, err := os.Executable(); err == nil {
		candidates = append([]string{filepath.Join(filepath.Dir(executable), configFileName)}, candidates...)
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return lintConfig{}, err
		}

		var cfg lintConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return lintConfig{}, err
		}
		return cfg, nil
	}

	return defaultLintConfig, nil
}

func enabled(name string, checks []string) bool {
	for _, check := range checks {
		if prefix, ok := strings.CutSuffix(check, "*"); ok {
			if strings.HasPrefix(name, prefix) {
				return true
			}
			continue
		}
		if check == name {
			return true
		}
	}

	return false
}

func selectChecks(checks []string, groups ...[]*lint.Analyzer) []*analysis.Analyzer {
	var result []*analysis.Analyzer
	for _, group := range groups {
		for _, analyzer := range group {
			if enabled(analyzer.Analyzer.Name, checks) {
				result = append(result, analyzer.Analyzer)
			}
		}
	}

	return result
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
	}
	myChecks = append(myChecks, selectChecks(cfg.Checks, staticcheck.Analyzers, simple.Analyzers, stylecheck.Analyzers)...)

	multichecker.Main(myChecks...)
}
