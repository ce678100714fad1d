/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/musiccompanion/apiserver/internal/client"
	"github.com/musiccompanion/apiserver/types"
	"github.com/spf13/cobra"
)

var (
	clientAPIURL    string
	clientStateFile string
	songsGenre      string
	songsQuery      string
)

// clientCmd talks to a running musicd server and keeps the session on disk.
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Command-line client for the musicd API",
}

func defaultStateFile() string {
	if v := os.Getenv("MUSICD_STATE_FILE"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".musicd.json"
	}
	return filepath.Join(dir, "musicd", "state.json")
}

func defaultAPIURL() string {
	if v := os.Getenv("MUSICD_API_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}

func openSession() (*client.Session, error) {
	session := client.NewSession(client.NewAPIClient(clientAPIURL, nil), client.NewFileStore(clientStateFile))
	if err := session.Load(); err != nil {
		return nil, err
	}
	return session, nil
}

// readPassword takes the password from MUSICD_PASSWORD or one line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if v := os.Getenv("MUSICD_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var clientLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		user, err := session.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var clientRegisterCmd = &cobra.Command{
	Use:   "register <name> <email>",
	Short: "Create an account and store the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		user, err := session.Register(cmd.Context(), args[0], args[1], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var clientLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		return session.Logout()
	},
}

var clientWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		if !session.IsAuthenticated() {
			return errors.New("not logged in")
		}
		user, err := session.API().Me(cmd.Context())
		if err != nil {
			return err
		}
		role := "user"
		if user.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s %s\n", user.Name, user.Email, role, user.ID)
		return nil
	},
}

var clientSongsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List songs",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		songs, err := session.API().ListSongs(cmd.Context(), types.SongFilter{Query: songsQuery, Genre: songsGenre})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tARTIST\tDURATION")
		for _, s := range songs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Artist, s.FormattedDuration())
		}
		return tw.Flush()
	},
}

var clientThemeCmd = &cobra.Command{
	Use:   "theme [light|dark|system]",
	Short: "Show or set the theme preference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewFileStore(clientStateFile)
		if len(args) == 1 {
			theme, err := client.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := client.SaveTheme(store, theme); err != nil {
				return err
			}
		}
		theme, err := client.LoadTheme(store)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.PersistentFlags().StringVar(&clientAPIURL, "api", defaultAPIURL(), "API base URL (env MUSICD_API_URL)")
	clientCmd.PersistentFlags().StringVar(&clientStateFile, "state", defaultStateFile(), "session file (env MUSICD_STATE_FILE)")

	clientSongsCmd.Flags().StringVar(&songsGenre, "genre", "", "filter by genre")
	clientSongsCmd.Flags().StringVarP(&songsQuery, "query", "q", "", "search title and artist")

	clientCmd.AddCommand(clientLoginCmd, clientRegisterCmd, clientLogoutCmd, clientWhoamiCmd, clientSongsCmd, clientThemeCmd)
}
