package main

import "github.com/clembu/nfogen/cmd/nfogen/cmd"

func main() {
	cmd.Execute()
}
