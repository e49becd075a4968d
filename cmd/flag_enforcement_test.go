package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestStatsRequiresUser(t *testing.T) {
	// Reset viper
	viper.Reset()
	defer viper.Reset()

	// Ensure user is empty
	viper.Set("user", "")

	err := statsCmd.PreRunE(statsCmd, []string{})
	if err == nil {
		t.Error("Expected error when user is missing, got nil")
	} else if err.Error() != "required flag(s) \"user\" not set" {
		t.Errorf("Expected 'required flag(s) \"user\" not set', got %v", err)
	}

	// Set user and check success
	viper.Set("user", "testuser")
	err = statsCmd.PreRunE(statsCmd, []string{})
	if err != nil {
		t.Errorf("Expected nil when user is set, got %v", err)
	}
}

func TestUpdateRequiresClient(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("user", "testuser")

	err := updateCmd.PreRunE(updateCmd, []string{})
	if err == nil || err.Error() != "required flag(s) \"client_id\" not set" {
		t.Errorf("Expected client_id to be required, got %v", err)
	}

	viper.Set("client_id", "id")
	err = updateCmd.PreRunE(updateCmd, []string{})
	if err == nil || err.Error() != "required flag(s) \"client_secret\" not set" {
		t.Errorf("Expected client_secret to be required, got %v", err)
	}

	viper.Set("client_secret", "secret")
	if err := updateCmd.PreRunE(updateCmd, []string{}); err != nil {
		t.Errorf("Expected nil with client credentials, got %v", err)
	}
}

func TestEmailRequiresFrom(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("user", "testuser")

	err := emailCmd.PreRunE(emailCmd, []string{"to@example.com", "stats"})
	if err == nil || err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected from to be required, got %v", err)
	}

	// A dry run never sends, so needs no sender.
	viper.Set("dryRun", true)
	if err := emailCmd.PreRunE(emailCmd, []string{"to@example.com", "stats"}); err != nil {
		t.Errorf("Expected nil for a dry run, got %v", err)
	}
}

func TestAuthenticateEmailRequiresFrom(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("user", "testuser")
	viper.Set("client_id", "id")
	viper.Set("client_secret", "secret")

	if err := authenticateCmd.PreRunE(authenticateCmd, []string{}); err != nil {
		t.Errorf("Expected nil without an email address, got %v", err)
	}
	err := authenticateCmd.PreRunE(authenticateCmd, []string{"me@example.com"})
	if err == nil || err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected from to be required when emailing, got %v", err)
	}
}

func TestInvalidTimeRange(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("user", "testuser")
	viper.Set("time_range", "forever")

	err := reportCmd.PreRunE(reportCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "invalid --time_range") {
		t.Errorf("Expected the time range to be rejected, got %v", err)
	}

	viper.Set("time_range", "long_term")
	if err := reportCmd.PreRunE(reportCmd, []string{}); err != nil {
		t.Errorf("Expected long_term to be accepted, got %v", err)
	}
}
