// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race, cover).
type Test mg.Namespace

// All runs every package's tests, the race detector included.
func (Test) All() error {
	if err := (Test{}).Unit(); err != nil {
		return err
	}
	return (Test{}).Race()
}

// Unit runs the tests of every package except the magefiles.
func (Test) Unit() error {
	pkgs, err := testPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, pkgs...)
	return sh.RunV(binGo, args...)
}

// Race runs the reactive and type system packages under the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./pkg/...")
}

// Cover writes a coverage profile to bin/cover.out and prints the summary.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "cover.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

func testPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for pkg := range strings.SplitSeq(out, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/magefiles") {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}
