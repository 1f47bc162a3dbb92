package main

import (
	"tracelens/cmd"
)

func main() {
	cmd.Execute()
}
