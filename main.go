package main

import "github.com/pagecraft/article/cmd"

func main() {
	cmd.Execute()
}
