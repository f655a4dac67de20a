package main

import (
	"fmt"
	"os"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/cmd/martech"
)

func main() {
	if err := martech.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
