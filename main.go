package main

import "github.com/packagewjx/feature-transformer/cmd"

func main() {
	cmd.Execute()
}
