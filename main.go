package main

import "github.com/josephlewis42/hybridsh/cmd"

func main() {
	cmd.Execute()
}
