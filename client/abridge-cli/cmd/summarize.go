package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	summaryType string
	summaryURL  string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text]",
	Short: "Summarize text, or the content of a web page with --url",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		text := strings.Join(args, " ")
		if summaryURL != "" {
			page, err := client.fetch(summaryURL)
			if err != nil {
				return err
			}
			text = page.Content
		}
		if strings.TrimSpace(text) == "" {
			return errors.New("provide text to summarize or --url")
		}

		res, err := client.summarize(text, summaryType, summaryURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n(%s summary, %d characters)\n", res.Summary, res.SummaryType, res.Characters)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Fetch the readable content of a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().fetch(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Content)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summaryType, "type", "medium", "summary length: short, medium or long")
	summarizeCmd.Flags().StringVar(&summaryURL, "url", "", "summarize the content of this web page")
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(fetchCmd)
}
