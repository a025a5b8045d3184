package main

import "github.com/funvibe/matchcore/pkg/cli"

func main() {
	cli.Run()
}
