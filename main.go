package main

import (
	"log"

	"github.com/LanderU/rmf-core/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
