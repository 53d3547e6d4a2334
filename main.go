package main

import "github.com/mtyhostal/apiserver/cmd"

func main() {
	cmd.Execute()
}
