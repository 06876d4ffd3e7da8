package github

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

const (
	actionsIssuer  = "https://token.actions.githubusercontent.com"
	actionsJWKSURL = actionsIssuer + "/.well-known/jwks"
)

type tokenVerifier struct {
	cache    *jwk.Cache
	jwksURL  string
	issuer   string
	audience string
}

// TokenVerifierOption configures NewTokenVerifier.
type TokenVerifierOption func(*tokenVerifier)

// WithIssuer overrides the expected issuer and JWKS endpoint.
func WithIssuer(issuer, jwksURL string) TokenVerifierOption {
	return func(v *tokenVerifier) {
		v.issuer = issuer
		v.jwksURL = jwksURL
	}
}

// NewTokenVerifier creates a verifier for GitHub Actions OIDC ID tokens.
// The JWKS is cached and refreshed in the background for the lifetime of
// ctx.
func NewTokenVerifier(ctx context.Context, audience string, opts ...TokenVerifierOption) (interfaces.TokenVerifier, error) {
	v := &tokenVerifier{
		jwksURL:  actionsJWKSURL,
		issuer:   actionsIssuer,
		audience: audience,
	}
	for _, opt := range opts {
		opt(v)
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(v.jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS endpoint", goerr.V("url", v.jwksURL))
	}
	v.cache = cache

	return v, nil
}

// VerifyToken checks signature, issuer, audience and expiry, then extracts
// the claims the dispatch surface consumes.
func (v *tokenVerifier) VerifyToken(ctx context.Context, raw string) (*model.ActionsClaims, error) {
	set, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("url", v.jwksURL))
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify ID token", goerr.T(types.ErrTagBadRequest))
	}

	claims := tok.PrivateClaims()
	out := &model.ActionsClaims{
		Repository: stringClaim(claims, "repository"),
		Ref:        stringClaim(claims, "ref"),
		EventName:  stringClaim(claims, "event_name"),
		SHA:        stringClaim(claims, "sha"),
		Workflow:   stringClaim(claims, "workflow"),
		RunID:      stringClaim(claims, "run_id"),
		Actor:      stringClaim(claims, "actor"),
	}
	if out.Repository == "" {
		return nil, goerr.New("ID token has no repository claim", goerr.T(types.ErrTagBadRequest))
	}

	return out, nil
}

func stringClaim(claims map[string]any, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
