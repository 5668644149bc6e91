package main

import "github.com/fatcatfablab/autodoh/cmd"

func main() {
	cmd.Execute()
}
