/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-insights/internal/spotify"
	"github.com/ademuri/spotify-insights/internal/store"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate [email] --user=foo",
	Short: "Authorizes access to the user's Spotify data",
	Long: `Prints the Spotify authorization link, or emails it when an address is given.
After granting access, paste the URL the browser was redirected to (or just its
code parameter) to store a token.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireClient(cmd, args); err != nil {
			return err
		}
		if len(args) == 1 && viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := authenticate(viper.GetString("database"), viper.GetString("from"), args, os.Stdin)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)

	var from string
	authenticateCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", authenticateCmd.Flags().Lookup("from"))

	var sendgridKey string
	authenticateCmd.Flags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key, for emailing the link")
	viper.BindPFlag("sendgrid_api_key", authenticateCmd.Flags().Lookup("sendgrid_api_key"))
}

func authenticate(dbPath string, fromAddress string, args []string, in io.Reader) error {
	user := strings.ToLower(viper.GetString("user"))
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	auth := newAuthenticator()
	state, err := spotify.NewState()
	if err != nil {
		return err
	}
	authURL := auth.AuthCodeURL(state)

	if len(args) == 1 {
		if err := emailAuthLink(fromAddress, args[0], authURL); err != nil {
			return err
		}
		fmt.Println("Sent authentication email.")
	} else {
		fmt.Printf("Visit this URL to authorize spotify-insights:\n\n%s\n\n", authURL)
	}

	fmt.Print("Paste the redirect URL or code: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading code: %w", err)
	}
	code, err := extractCode(line, state)
	if err != nil {
		return err
	}

	tok, err := auth.Exchange(context.Background(), code)
	if err != nil {
		return err
	}
	if err := db.SaveToken(user, tok); err != nil {
		return fmt.Errorf("updating db with token: %w", err)
	}

	fmt.Printf("Successfully authenticated %q\n", user)
	return nil
}

func emailAuthLink(fromAddress, toAddress, authURL string) error {
	from := mail.NewEmail("spotify-insights", fromAddress)
	subject := "Authorize spotify-insights"
	to := mail.NewEmail(toAddress, toAddress)
	bodyText := "Click here to authorize access to your Spotify data: " + authURL
	bodyHTML := fmt.Sprintf(`<a href="%s">Authorize spotify-insights</a>`, authURL)
	message := mail.NewSingleEmail(from, subject, to, bodyText, bodyHTML)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// extractCode accepts either the full redirect URL or the bare code. A URL
// must carry the expected state.
func extractCode(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("no code given")
	}
	if !strings.Contains(input, "?") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if got := q.Get("state"); got != state {
		return "", fmt.Errorf("state mismatch: got %q", got)
	}
	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect URL has no code")
	}
	return code, nil
}
