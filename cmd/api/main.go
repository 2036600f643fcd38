package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/dayboard/cmd/api/commands"
)

// @title Dayboard API
// @version 1.0
// @description Notes, tasks and dashboard data for the Dayboard productivity app
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session access token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "dayboard",
		Short: "Dayboard API Server",
		Long:  `Dayboard serves a user's notes, tasks and dashboard from the hosted store, validating every record on the way out.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewNotesCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
