package main

import "github.com/OpenTraceLab/OpenTraceIDF/cmd/otidf/cmd"

func main() {
	cmd.Execute()
}
