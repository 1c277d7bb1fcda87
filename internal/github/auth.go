package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// NewTokenClient creates a RESTClient authenticated with a static token.
// A non-default apiURL selects a GitHub Enterprise Server.
func NewTokenClient(ctx context.Context, token, apiURL string, opts ...Option) (*RESTClient, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))
	if apiURL != "" && strings.TrimSuffix(apiURL, "/") != DefaultAPIURL {
		var err error
		if client, err = client.WithEnterpriseURLs(apiURL, apiURL); err != nil {
			return nil, fmt.Errorf("enterprise url: %w", err)
		}
	}
	return NewRESTClient(client, opts...), nil
}

// AppAuth authenticates as a GitHub App and mints installation tokens.
type AppAuth struct {
	appID int64
	key   *rsa.PrivateKey
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
	now     func() time.Time
}

// NewAppAuth parses a PEM private key in PKCS1 or PKCS8 form.
func NewAppAuth(appID int64, privateKeyPEM []byte) (*AppAuth, error) {
	key, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return &AppAuth{appID: appID, key: key, now: time.Now}, nil
}

func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the private key")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return rsaKey, nil
}

// JWT returns a signed app token. iat is backdated 60s; exp must stay under
// ten minutes.
func (a *AppAuth) JWT() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(a.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
}

// InstallationClient exchanges the app JWT for an installation token and
// returns a client authenticated with it.
func (a *AppAuth) InstallationClient(ctx context.Context, installationID int64, opts ...Option) (*RESTClient, error) {
	signed, err := a.JWT()
	if err != nil {
		return nil, fmt.Errorf("generate JWT: %w", err)
	}

	appClient, err := a.newClient(http.DefaultClient)
	if err != nil {
		return nil, err
	}
	tok, _, err := appClient.WithAuthToken(signed).Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok.GetToken()})
	client, err := a.newClient(oauth2.NewClient(ctx, ts))
	if err != nil {
		return nil, err
	}
	return NewRESTClient(client, opts...), nil
}

func (a *AppAuth) newClient(hc *http.Client) (*gh.Client, error) {
	client := gh.NewClient(hc)
	if a.BaseURL == "" {
		return client, nil
	}
	u, err := url.Parse(strings.TrimSuffix(a.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client.BaseURL = u
	return client, nil
}
