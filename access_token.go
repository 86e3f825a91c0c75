package cloudsqlconn

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSupplier yields the bearer token used to authenticate ephemeral
// certificate requests in IAM auth mode.
//
// Token returns (nil, nil) when no token is available — this is the normal,
// expected result in PASSWORD auth mode, where the ephemeral certificate
// request is submitted without a token. In IAM auth mode, a nil token with a
// nil error is treated by the orchestrator as a missing-credential failure
// (KindAuthRequired), not success.
type TokenSupplier interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenSupplierFunc adapts a plain function to a TokenSupplier.
type TokenSupplierFunc func(ctx context.Context) (*oauth2.Token, error)

// Token implements TokenSupplier.
func (f TokenSupplierFunc) Token(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// StaticToken returns a TokenSupplier that always yields tok (or no token, if
// tok is nil), used by PASSWORD-mode connectors and in tests.
func StaticToken(tok *oauth2.Token) TokenSupplier {
	return TokenSupplierFunc(func(context.Context) (*oauth2.Token, error) {
		return tok, nil
	})
}
