//go:build mage

// Build and check typekit with fo dashboard rendering.
//
// Targets:
//
//	mage          Build, catalog check, lint, test (default)
//	mage qa       Adds race detection, property tests at depth, all linters, govulncheck
//	mage catalog  Validate the embedded catalog and print its rule table
//
// Set CLI=1 for console output instead of dashboard.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const binary = "bin/typekit"

// cli returns true if CLI=1 is set (console output instead of dashboard).
func cli() bool {
	return os.Getenv("CLI") != ""
}

// Default target runs build, catalog check, lint and test.
var Default = All

// All runs build, catalog check, lint and test.
func All() error {
	if cli() {
		fmt.Println("═══ Build + Catalog + Lint + Test ═══")
		return runSequential(
			buildStep(),
			step{"Catalog", binary, []string{"validate"}},
			step{"Test", "go", []string{"test", "-cover", "./..."}},
			step{"Vet", "go", []string{"vet", "./..."}},
			step{"Gofmt", "gofmt", []string{"-l", "."}},
			step{"Staticcheck", "golangci-lint", []string{"run", "--enable-only", "staticcheck", "./..."}},
		)
	}
	return runFoDashboard(
		"Build/typekit:go build -o "+binary+" ./cmd/typekit",
		"Catalog/validate:go run ./cmd/typekit validate",
		"Test/unit:go test -json -cover ./...",
		"Lint/vet:go vet ./...",
		"Lint/gofmt:gofmt -l .",
		"Lint/staticcheck:golangci-lint run --allow-parallel-runners --enable-only staticcheck --output.sarif.path=stdout ./...",
	)
}

// Qa runs the full suite. Property tests run with a larger rapid budget.
func Qa() error {
	if cli() {
		fmt.Println("═══ Full QA ═══")
		return runSequential(
			buildStep(),
			step{"Catalog", binary, []string{"validate"}},
			step{"Race", "go", []string{"test", "-race", "-timeout=5m", "./..."}},
			step{"Property", "go", []string{"test", "-run", "PropertyBased", "./pkg/...", "-rapid.checks=2000"}},
			step{"Golangci-lint", "golangci-lint", []string{"run", "./..."}},
			step{"Govulncheck", "govulncheck", []string{"./..."}},
		)
	}
	return runFoDashboard(
		"Build/typekit:go build -o "+binary+" ./cmd/typekit",
		"Catalog/validate:go run ./cmd/typekit validate",
		"Test/race:go test -race -json -timeout=5m ./...",
		"Test/property:go test -json -run PropertyBased ./pkg/... -rapid.checks=2000",
		"Lint/errcheck:golangci-lint run --allow-parallel-runners --enable-only errcheck --output.sarif.path=stdout ./...",
		"Lint/gosec:golangci-lint run --allow-parallel-runners --enable-only gosec --output.sarif.path=stdout ./...",
		"Lint/revive:golangci-lint run --allow-parallel-runners --enable-only revive --output.sarif.path=stdout ./...",
		"Lint/misspell:golangci-lint run --allow-parallel-runners --enable-only misspell --output.sarif.path=stdout ./...",
		"Security/govulncheck:govulncheck ./...",
	)
}

// Catalog validates the embedded catalog and lists its rules.
func Catalog() error {
	return runSequential(
		buildStep(),
		step{"Validate", binary, []string{"validate"}},
		step{"Rules", binary, []string{"rules"}},
	)
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	return os.RemoveAll(filepath.Dir(binary))
}

type step struct {
	name string
	cmd  string
	args []string
}

func buildStep() step {
	return step{"Build", "go", []string{"build", "-o", binary, "./cmd/typekit"}}
}

func runSequential(steps ...step) error {
	for _, s := range steps {
		fmt.Printf("→ %s\n", s.name)
		cmd := exec.Command(s.cmd, s.args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", s.name, err)
		}
	}
	return nil
}

func runFoDashboard(tasks ...string) error {
	// Prefer a local dev build of fo, then PATH.
	foBin := filepath.Join(os.Getenv("HOME"), "Projects/fo/bin/fo")
	if _, err := os.Stat(foBin); err != nil {
		var lookupErr error
		foBin, lookupErr = exec.LookPath("fo")
		if lookupErr != nil {
			return fmt.Errorf("fo binary not found at ~/Projects/fo/bin/fo or in PATH")
		}
	}

	args := []string{"--dashboard"}
	for _, t := range tasks {
		args = append(args, "--task", t)
	}

	cmd := exec.Command(foBin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PATH="+os.Getenv("PATH")+":"+os.Getenv("HOME")+"/go/bin")
	return cmd.Run()
}
