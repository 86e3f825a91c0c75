package cloudsqlconn

import (
	"context"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// resolveCredentialSource turns config's credentialSource into an
// oauth2.TokenSource, or (nil, nil) to signal "defer to application default
// credential discovery."
func resolveCredentialSource(ctx context.Context, cs credentialSource, scopes ...string) (oauth2.TokenSource, error) {
	switch cs.kind {
	case credentialSourcePath:
		b, err := os.ReadFile(cs.path)
		if err != nil {
			return nil, NewError(KindInvalidArgument, "", err, "failed to read credentials file %q", cs.path)
		}
		creds, err := google.CredentialsFromJSON(ctx, b, scopes...)
		if err != nil {
			return nil, NewError(KindInvalidArgument, "", err, "invalid credentials file %q", cs.path)
		}
		return creds.TokenSource, nil
	case credentialSourceValue:
		creds, err := google.CredentialsFromJSON(ctx, cs.jsonVal, scopes...)
		if err != nil {
			return nil, NewError(KindInvalidArgument, "", err, "invalid credentials JSON")
		}
		return creds.TokenSource, nil
	case credentialSourceSupplier:
		return tokenSourceFromSupplier(cs.supplier), nil
	default:
		return nil, nil
	}
}

// tokenSourceFromSupplier adapts a CredentialsSupplierFunc to an
// oauth2.TokenSource for use as the Admin API transport's credential.
func tokenSourceFromSupplier(f CredentialsSupplierFunc) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, oauth2.TokenSource(tokenSourceFunc(func() (*oauth2.Token, error) {
		return f(context.Background())
	})))
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }
