// cmd/token mints bearer tokens for the API. The service has no login
// endpoint, so operators and local development use this to act as a user.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/config"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&userID, "user", "", "user id placed in the token subject")
	flagSet.StringVar(&role, "role", string(model.RoleAttendee), "attendee, organizer or admin")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if userID == "" {
		return errors.New("--user is required")
	}
	if ttl <= 0 {
		return errors.New("--ttl must be positive")
	}
	parsed, err := model.ParseRole(role)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	token, err := auth.New(cfg.JWTSecret, logger).IssueToken(userID, parsed, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
