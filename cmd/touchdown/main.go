package main

import "touchdown/internal/cli"

func main() {
	cli.Main()
}
