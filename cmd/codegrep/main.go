package main

import "github.com/mvp-joe/codegrep/internal/cli"

func main() {
	cli.Execute()
}
