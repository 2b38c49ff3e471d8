// Package google holds the pieces shared by the Cloud Vision and Cloud
// Translation adapters: credentials, request throttling and error mapping.
package google

import (
	"errors"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// ErrNoCredentials is returned when no Google credential is configured.
var ErrNoCredentials = errors.New("google: no credentials configured")

// ClientOptions builds API client options from settings. A bearer access
// token wins over an API key, which wins over a service account file.
// endpoint overrides the API base URL and is empty in production.
func ClientOptions(settings domain.GoogleSettings, endpoint string) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	switch {
	case settings.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: settings.AccessToken,
			TokenType:   "Bearer",
		})
		opts = append(opts, option.WithTokenSource(ts))
	case settings.APIKey != "":
		opts = append(opts, option.WithAPIKey(settings.APIKey))
	case settings.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsFile))
	default:
		return nil, ErrNoCredentials
	}

	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts, nil
}
