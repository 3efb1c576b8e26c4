// SeamNest - automatic nesting of clothing pattern pieces.
//
// Build:
//
//	go build -o seamnest ./cmd/seamnest
//
// With version information:
//
//	go build -ldflags "-X github.com/piwi3910/SeamNest/internal/version.Version=1.0.0" ./cmd/seamnest
package main

import "github.com/piwi3910/SeamNest/internal/cli"

func main() {
	cli.Execute()
}
