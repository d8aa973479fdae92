package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mrstrict/internal/config"
	"mrstrict/internal/service"
)

var errNoSubject = errors.New("--subject must be a UUID")

type tokenOptions struct {
	Subject string
	Email   string
	TTL     time.Duration
}

func newTokenCmd(cfg func() *config.Config) *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cfg().JWT, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "", "User ID (UUID) the token is issued to")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "Token lifetime (defaults to the configured access expiry)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(cfg config.JWTConfig, opts tokenOptions, stdout io.Writer) error {
	userID, err := uuid.Parse(opts.Subject)
	if err != nil {
		return fmt.Errorf("%w: %v", errNoSubject, err)
	}

	issued, err := service.NewTokenService(cfg).Issue(userID, opts.Email, opts.TTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, issued.AccessToken)
	return nil
}
