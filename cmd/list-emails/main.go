// Command list-emails prints the most recent emails sent through Resend.
//
// The API key is read from RESEND_API_KEY. The Resend client reads RESEND_BASE_URL itself when
// the endpoint needs overriding. The request is made once with no timeout or retry.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/email"
	"github.com/shelfmark/shelfmark-web/internal/logger"
)

func main() {
	log := logger.Production()
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), os.Stdout, os.Getenv(constant.ResendAPIKeyEnv), ""); err != nil {
		log.Error("Failed to list emails", "env", constant.ResendAPIKeyEnv, "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

// run lists the emails once and writes the indented response body to stdout.
// An empty baseURL keeps the client's default endpoint.
func run(ctx context.Context, stdout io.Writer, apiKey, baseURL string) error {
	lister, err := email.NewLister(apiKey, baseURL)
	if err != nil {
		return fmt.Errorf("failed to create Resend client: %w", err)
	}

	raw, err := lister.ListRaw(ctx)
	if err != nil {
		return err
	}

	if _, err := stdout.Write(email.Pretty(raw)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
