package main

import (
	"github.com/joho/godotenv"

	"github.com/mramin786/jboss-monitor/internal/cli"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2026-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Credential and tuning variables may live in a local .env file.
	_ = godotenv.Load()

	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
