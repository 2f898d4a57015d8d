package main

import "github.com/kgruel/ctxssg/cmd"

func main() {
	cmd.Execute()
}
