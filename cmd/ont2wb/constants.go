package main

// Default limits for CLI commands.
const (
	DefaultHistoryLimit = 20
)

// Environment variables holding credentials.
const (
	envUser     = "WIKIBASE_USER"
	envPassword = "WIKIBASE_PASSWORD"
)
