// SPDX-License-Identifier: MPL-2.0

// Command bpscan lists the prototypes blueprint documents reference and
// resolves the mod packages they need.
package main

import cmd "github.com/fgardt/factorio-scanner-sub002/cmd/bpscan"

func main() {
	cmd.Execute()
}
