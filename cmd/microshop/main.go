package main

import (
	"fmt"
	"os"

	"microshop/internal/cli"
)

// @title microshop API
// @version 1.0
// @description Auth, catalog, orders and shipping services of the microshop backend.
// @contact.name API Support
// @contact.email support@microshop.local
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
