package mo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

type AuthOptions struct {
	Server       string
	Realm        string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NewAuthClient returns an http.Client that injects OIDC bearer tokens
// obtained from Keycloak via the client-credentials flow. Both MO clients
// share it.
func NewAuthClient(ctx context.Context, opts AuthOptions) *http.Client {
	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL: fmt.Sprintf(
			"%s/realms/%s/protocol/openid-connect/token",
			strings.TrimRight(opts.Server, "/"),
			opts.Realm,
		),
	}
	client := cc.Client(ctx)
	client.Timeout = opts.Timeout
	return client
}
