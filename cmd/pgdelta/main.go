package main

import (
	"github.com/joho/godotenv"

	"github.com/pgdelta/pgdelta/cmd"
)

func main() {
	// Load .env if present so connection settings can live beside the repo.
	_ = godotenv.Load()

	cmd.Execute()
}
