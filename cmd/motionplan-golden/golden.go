package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Opentrons/OpenTrons/pkg/engine"
)

const generatedBy = "cmd/motionplan-golden"

// readSuite returns the case names listed in a suite file, one per line.
// Blank lines and "#" comments are skipped.
func readSuite(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("suite is empty: %s", path)
	}
	return out, nil
}

// render formats a case's output as a golden file.
func render(name string, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scenario: %s\n", name)
	fmt.Fprintf(&b, "# Generated-by: %s\n", generatedBy)
	for _, ln := range lines {
		if strings.HasPrefix(ln, "## ") {
			b.WriteString("\n")
		}
		b.WriteString(ln)
		b.WriteString("\n")
	}
	return b.String()
}

// goldenCase is one case directory: scenario.yaml in, expected.txt and
// actual.txt out.
type goldenCase struct {
	name string
	dir  string
}

func (c goldenCase) scenario() string { return filepath.Join(c.dir, "scenario.yaml") }
func (c goldenCase) expected() string { return filepath.Join(c.dir, "expected.txt") }
func (c goldenCase) actual() string   { return filepath.Join(c.dir, "actual.txt") }

func (c goldenCase) generate(opts ...engine.Option) (string, error) {
	lines, err := runScenario(c.scenario(), opts...)
	if err != nil {
		return "", err
	}
	return render(c.name, lines), nil
}

// selectCases resolves the suite against the case directory, keeping
// only the named case when only is set.
func selectCases(suite, casedir, only string) ([]goldenCase, error) {
	names, err := readSuite(suite)
	if err != nil {
		return nil, err
	}
	var out []goldenCase
	for _, name := range names {
		if only != "" && only != name {
			continue
		}
		out = append(out, goldenCase{name: name, dir: filepath.Join(casedir, name)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no case named %q in %s", only, suite)
	}
	return out, nil
}

// firstDiff returns the first line where got and want differ, or "" if
// they are equal.
func firstDiff(got, want string) string {
	if got == want {
		return ""
	}
	g := strings.Split(got, "\n")
	w := strings.Split(want, "\n")
	for i := 0; i < len(g) || i < len(w); i++ {
		var gl, wl string
		if i < len(g) {
			gl = g[i]
		}
		if i < len(w) {
			wl = w[i]
		}
		if gl != wl {
			return fmt.Sprintf("line %d:\n  expected: %q\n  actual:   %q", i+1, wl, gl)
		}
	}
	return "outputs differ"
}
