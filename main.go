package main

import (
	"os"
)

const (
	greetingBanner = `
███████       ███████ ██████  ██ ████████  ██████  ██████
██            ██      ██   ██ ██    ██    ██    ██ ██   ██
█████   █████ █████   ██   ██ ██    ██    ██    ██ ██████
██            ██      ██   ██ ██    ██    ██    ██ ██   ██
███████       ███████ ██████  ██    ██     ██████  ██   ██
`
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
