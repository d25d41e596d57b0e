package azure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ri-purchase/connectors/config"
)

func TestStaticTokenProvider(t *testing.T) {
	token, err := NewStaticTokenProvider("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestTokenProviderFromConfigPrefersAccessToken(t *testing.T) {
	cfg := config.Default()
	cfg.Azure.AccessToken = "cli-token"
	cfg.Azure.TenantID = "tenant"
	cfg.Azure.ClientID = "client"
	cfg.Azure.ClientSecret = "secret"

	p, err := TokenProviderFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &StaticTokenProvider{}, p)
}

func TestTokenProviderFromConfigServicePrincipal(t *testing.T) {
	cfg := config.Default()
	cfg.Azure.TenantID = "tenant"
	cfg.Azure.ClientID = "client"
	cfg.Azure.ClientSecret = "secret"

	p, err := TokenProviderFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ClientCredentialsProvider{}, p)
}

func TestTokenProviderFromConfigNoCredentials(t *testing.T) {
	_, err := TokenProviderFromConfig(config.Default())
	assert.ErrorIs(t, err, ErrNoCredentials)
}
