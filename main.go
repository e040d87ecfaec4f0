package main

import (
	"os"

	"github.com/iam-console/iam-console/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
