package main

import (
	"log"

	"github.com/marklist/marklist/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ marklist failed to start: %v", err)
	}
}
