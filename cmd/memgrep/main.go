package main

import "github.com/mvp-joe/memgrep/internal/cli"

func main() {
	cli.Execute()
}
