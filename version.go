// version.go - build identification and the compiled-features banner,
// grounded on the teacher's features.go/printFeatures.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"runtime"
	"sort"
)

const Version = "0.1.0"

// compiledFeatures tracks build-time feature flags via init() registration,
// the same pattern the teacher's video/audio backends used to announce
// which optional subsystems a build was compiled with.
var compiledFeatures []string

func init() {
	compiledFeatures = append(compiledFeatures,
		"vdu-graphics", "mode7-teletext", "file-io", "mouse", "ebiten-display")
}

func printVersion() {
	fmt.Printf("rvbasic %s\n", Version)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Println("Compiled features:")
	sort.Strings(compiledFeatures)
	for _, f := range compiledFeatures {
		fmt.Printf("  %s\n", f)
	}
}
