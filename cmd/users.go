/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/port-russell/marina/config"
	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/server"
	"github.com/port-russell/marina/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var newUser services.UserInput

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage staff accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff account",
	Long: `Create a staff account directly in the database, e.g. the first
account of a fresh deployment.

	marina users create --username capitaine --email capitaine@port-russell.fr

Without --password the password is read from the terminal.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if newUser.Password == "" {
			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			newUser.Password = password
		}

		cfg := config.LoadConfig()
		repos, err := server.OpenRepositories(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		svcs := server.NewServices(repos, auth.NewHasher(cfg.Auth.BcryptCost), nil)
		user, err := svcs.Users.Create(cmd.Context(), newUser)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)

	usersCreateCmd.Flags().StringVar(&newUser.Username, "username", "", "display name")
	usersCreateCmd.Flags().StringVar(&newUser.Email, "email", "", "login email")
	usersCreateCmd.Flags().StringVar(&newUser.Password, "password", "", "initial password, prompted for when omitted")
	_ = usersCreateCmd.MarkFlagRequired("email")
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
