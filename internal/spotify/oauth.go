package spotify

import "golang.org/x/oauth2"

const (
	// AuthURL is the provider's authorization endpoint.
	AuthURL = "https://accounts.spotify.com/authorize"
	// TokenURL is the provider's token exchange/refresh endpoint.
	TokenURL = "https://accounts.spotify.com/api/token"
	// DefaultAPIBaseURL is the provider's data API root.
	DefaultAPIBaseURL = "https://api.spotify.com/v1"
)

// DefaultScopes covers the history reads the analytics pipeline needs.
var DefaultScopes = []string{
	"user-read-recently-played",
	"user-top-read",
	"user-read-private",
	"user-read-email",
}

// NewOAuthConfig builds the authorization-code flow configuration for the
// provider.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
	}
}
