// Package email talks to the Resend transactional-email API.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/tidwall/pretty"
)

const emailsPath = "emails"

// ErrMissingAPIKey is returned when no Resend API key was supplied.
var ErrMissingAPIKey = errors.New("resend API key is required")

// Lister fetches the most recent emails sent through Resend.
type Lister struct {
	client *resend.Client
}

// NewLister creates a Lister. baseURL overrides the Resend endpoint when not empty; otherwise
// the client's default applies, which already honours RESEND_BASE_URL.
func NewLister(apiKey, baseURL string) (*Lister, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := resend.NewClient(apiKey)
	if baseURL != "" {
		// Relative paths resolve against the last segment unless the base ends with a slash.
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid resend base URL %q: %w", baseURL, err)
		}
		client.BaseURL = u
	}

	return &Lister{client: client}, nil
}

// ListRaw issues a single GET /emails and returns the response body untouched.
func (l *Lister) ListRaw(ctx context.Context) (json.RawMessage, error) {
	req, err := l.client.NewRequest(ctx, http.MethodGet, emailsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("resend: failed to build list request: %w", err)
	}

	var body json.RawMessage
	if _, err := l.client.Perform(req, &body); err != nil {
		return nil, fmt.Errorf("resend: failed to list emails: %w", err)
	}
	return body, nil
}

// Pretty indents a JSON document for terminal output.
func Pretty(raw []byte) []byte {
	return pretty.Pretty(raw)
}
