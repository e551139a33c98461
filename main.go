package main

import "github.com/KaramelBytes/genexpr-cli/cmd"

func main() {
	cmd.Execute()
}
