package main

import "github.com/yumyai/orthogroup/cmd"

func main() {
	cmd.Execute()
}
