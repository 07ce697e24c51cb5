package main

import "github.com/ajmills/ghostdom/internal/cli"

func main() {
	cli.Execute()
}
