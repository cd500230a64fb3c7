/*
	Copyright 2026 Alexander Heilmeier
*/

package main

import "github.com/heilmeiera/time-discrete-race-simulator/cmd"

func main() {
	cmd.Execute()
}
