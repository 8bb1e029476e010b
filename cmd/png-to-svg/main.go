package main

import "github.com/roshanlimbu/png-to-svg/internal/cli"

func main() {
	cli.Execute()
}
