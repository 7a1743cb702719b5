package main

import (
	"os"

	"github.com/LeventeLantos/webhook-chat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
