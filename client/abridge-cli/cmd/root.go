package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:          "abridge-cli",
	Short:        "A CLI client for the Abridge summarization service",
	Long:         `A command-line interface for registering, logging in, summarizing text and fetching web page content.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "Abridge server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ABRIDGE_TOKEN"), "access token (defaults to $ABRIDGE_TOKEN)")
}

func newClient() *apiClient {
	return &apiClient{baseURL: serverURL, token: token}
}
