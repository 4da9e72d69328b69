package main

import (
	"os"

	"github.com/shandysiswandi/authbite/internal/app"
)

func main() {
	application := app.New(os.Args[1:]) // Initialize the application for this command line
	os.Exit(application.Run())          // Run the command, serve blocks until a termination signal
}
