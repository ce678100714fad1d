/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/musiccompanion/apiserver/config"
	"github.com/musiccompanion/apiserver/internal/db"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var demote bool

var usersPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant (or with --demote, revoke) administrator rights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		users := services.NewUserService(store.NewUserRepository(conn), nil)
		user, err := users.SetAdmin(cmd.Context(), args[0], !demote)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user with email %q", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", user.Email, user.IsAdmin)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersPromoteCmd)
	usersPromoteCmd.Flags().BoolVar(&demote, "demote", false, "revoke administrator rights instead")
}
