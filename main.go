package main

import "github.com/homerun-app/homerun/cmd"

func main() {
	cmd.Execute()
}
