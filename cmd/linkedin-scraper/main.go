package main

import (
	"context"

	"linkedin-scraper/cmd/linkedin-scraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
