package azure

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"

	"ri-purchase/connectors/config"
)

const managementScope = "https://management.azure.com/.default"

// TokenProvider yields a bearer token for the Azure management plane.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider serves a pre-acquired token, e.g. the output of
// `az account get-access-token`.
type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(context.Context) (string, error) {
	return p.token, nil
}

// ClientCredentialsProvider obtains tokens from Azure AD using the OAuth2
// client-credentials grant for a service principal. Token caching and
// refresh are handled by the oauth2 package.
type ClientCredentialsProvider struct {
	cfg *clientcredentials.Config
}

func NewClientCredentialsProvider(tenantID, clientID, clientSecret string) *ClientCredentialsProvider {
	return &ClientCredentialsProvider{cfg: &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{managementScope},
	}}
}

func (p *ClientCredentialsProvider) Token(ctx context.Context) (string, error) {
	t, err := p.cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire Azure AD token: %w", err)
	}
	return t.AccessToken, nil
}

// ErrNoCredentials means neither a token nor service-principal settings were
// configured. Credential problems are fatal before any row is processed.
var ErrNoCredentials = errors.New("no Azure credentials configured: set AZURE_ACCESS_TOKEN or tenant/client id and secret")

// TokenProviderFromConfig picks a provider from the configuration: an
// explicit access token wins, then service-principal credentials.
func TokenProviderFromConfig(cfg *config.Config) (TokenProvider, error) {
	if cfg.Azure.AccessToken != "" {
		return NewStaticTokenProvider(cfg.Azure.AccessToken), nil
	}
	if cfg.Azure.TenantID != "" && cfg.Azure.ClientID != "" && cfg.Azure.ClientSecret != "" {
		return NewClientCredentialsProvider(cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret), nil
	}
	return nil, ErrNoCredentials
}
