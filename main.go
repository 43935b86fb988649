// SPDX-License-Identifier: MIT

package main

import "github.com/esacteksab/gh-audit/cmd"

func main() {
	cmd.Execute()
}
