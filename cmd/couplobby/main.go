package main

import "github.com/mcoot/couplobby/internal/cli"

func main() {
	cli.Execute()
}
