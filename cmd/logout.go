package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-insights/internal/store"
)

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Forgets the user's stored Spotify token",
	Long:    `Cached listening data is kept; run authenticate to fetch again.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := logout(viper.GetString("database"), viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func logout(dbPath, user string) error {
	user = strings.ToLower(user)
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tokens, err := newTokenHolder(db, user)
	if errors.Is(err, store.ErrNoToken) {
		fmt.Printf("No token stored for %q\n", user)
		return nil
	}
	if err != nil {
		return err
	}

	// The holder's change callback clears the stored token.
	tokens.Invalidate()
	if _, err := db.GetToken(user); !errors.Is(err, store.ErrNoToken) {
		return fmt.Errorf("token for %q was not cleared", user)
	}
	fmt.Printf("Logged out %q\n", user)
	return nil
}
