// Package main is the entry point for the DocQA service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/docqa/internal/docqa"
)

func main() {
	docqa.NewApp().Run()
}
