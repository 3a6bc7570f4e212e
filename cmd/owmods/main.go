package main

import (
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
)

func main() {
	// OWMODS_* overrides may live in a local .env file
	_ = godotenv.Load()

	Execute()
}
