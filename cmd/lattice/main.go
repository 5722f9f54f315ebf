// Command lattice manages reactive type definitions.
package main

import "github.com/mesh-intelligence/lattice/internal/cli"

func main() {
	cli.Main()
}
