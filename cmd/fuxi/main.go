package main

import "github.com/agenthands/fuxi/cmd/fuxi/cmd"

func main() {
	cmd.Execute()
}
