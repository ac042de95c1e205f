package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerEmail string

var registerCmd = &cobra.Command{
	Use:   "register [username] [password]",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().register(args[0], registerEmail, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s registered successfully\n", args[0])
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [username] [password]",
	Short: "Log in and print an access token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pair, err := newClient().login(args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "export ABRIDGE_TOKEN=%s\n", pair.Access)
		fmt.Fprintf(out, "# refresh token: %s\n", pair.Refresh)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	_ = registerCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
}
