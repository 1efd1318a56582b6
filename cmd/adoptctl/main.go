package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Apurer/pet-adoption-api/cmd/adoptctl/commands"
)

func main() {
	_ = godotenv.Load()
	if err := commands.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
