package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// DefaultScope requests every application permission granted to the
// service identity on Microsoft Graph.
const DefaultScope = "https://graph.microsoft.com/.default"

// TokenProvider yields bearer tokens for Graph requests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// CachedTokenProvider fetches a token once and reuses it until it is about
// to expire. It is the only process-wide mutable state of the service and is
// constructed once at startup, then injected.
type CachedTokenProvider struct {
	credential azcore.TokenCredential
	scopes     []string
	skew       time.Duration
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

// NewCachedTokenProvider wraps any Azure token credential. skew is how long
// before expiry the token is considered stale.
func NewCachedTokenProvider(credential azcore.TokenCredential, skew time.Duration, scopes ...string) *CachedTokenProvider {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	if skew < 0 {
		skew = 0
	}
	return &CachedTokenProvider{
		credential: credential,
		scopes:     scopes,
		skew:       skew,
		now:        time.Now,
	}
}

// NewClientSecretProvider builds the client-credentials identity used by the
// service (tenant, application id, secret).
func NewClientSecretProvider(tenantID, clientID, secret string, skew time.Duration) (*CachedTokenProvider, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("create client secret credential: %w", err)
	}
	return NewCachedTokenProvider(cred, skew), nil
}

// Token returns the cached token or refreshes it when expired.
func (p *CachedTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Add(p.skew).Before(p.expiresOn) {
		return p.token, nil
	}

	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: p.scopes})
	if err != nil {
		return "", fmt.Errorf("acquire graph token: %w", err)
	}
	p.token = tok.Token
	p.expiresOn = tok.ExpiresOn
	return p.token, nil
}

// StaticToken is a TokenProvider returning a fixed token; handy for local
// tooling and tests.
type StaticToken string

// Token implements TokenProvider.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
