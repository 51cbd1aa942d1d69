// FilePath: cmd/main.go
package main

import (
	"fmt"
	"os"

	tm "github.com/buger/goterm"
	"github.com/joho/godotenv"
	"github.com/secador-solar/sensorhub/internal/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// @title Sensor Hub API
// @version 1.0
// @description Controllers, ensayos and sensor readings of the solar dryer network.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	err := rootCommand().Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____                            __  __      __  ",
		"  / ___/___  ____  _________  _____/ / / /_  __/ /_ ",
		"  \\__ \\/ _ \\/ __ \\/ ___/ __ \\/ ___/ /_/ / / / / __ \\",
		" ___/ /  __/ / / (__  ) /_/ / /  / __  / /_/ / /_/ /",
		"/____/\\___/_/ /_/____/\\____/_/  /_/ /_/\\__,_/_.___/ ",
		"....................................................  " + Version,
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
