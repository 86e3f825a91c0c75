package cloudsql

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"errors"
	"log/slog"

	cloudsqlconn "github.com/sufield/cloudsqlconn"
	"github.com/sufield/cloudsqlconn/internal/assert"
	"github.com/sufield/cloudsqlconn/internal/bg"
	"github.com/sufield/cloudsqlconn/internal/future"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// GetConnectionInfo runs the full instance-data refresh DAG: token fetch,
// metadata fetch, and (once token and key pair are both ready) ephemeral
// certificate fetch proceed concurrently; TLS assembly waits on metadata and
// the certificate; the final result waits on all of the above. runner
// controls whether each stage actually runs on its own goroutine
// (bg.Async, in production) or inline (bg.Sync, for deterministic tests and
// debugging).
func GetConnectionInfo(
	ctx context.Context,
	runner bg.Runner,
	client AdminAPIClient,
	instanceName cloudsqlconn.InstanceName,
	tokens cloudsqlconn.TokenSupplier,
	authType cloudsqlconn.AuthType,
	keyPair *rsa.PrivateKey,
) (cloudsqlconn.ConnectionInfo, error) {
	tokenFuture := future.New(runner, func() (*oauth2.Token, error) {
		return tokens.Token(ctx)
	})

	metadataFuture := future.New(runner, func() (cloudsqlconn.InstanceMetadata, error) {
		return FetchMetadata(ctx, client, instanceName, authType)
	})

	certFuture := future.WhenAllComplete(ctx, runner, []future.Waiter{tokenFuture}, func() (tls.Certificate, error) {
		tok, err := tokenFuture.Get(ctx)
		if err != nil {
			return tls.Certificate{}, err
		}
		return FetchEphemeralCert(ctx, client, instanceName, keyPair, tok, authType)
	})

	tlsFuture := future.WhenAllComplete(ctx, runner, []future.Waiter{metadataFuture, certFuture}, func() (cloudsqlconn.TLSMaterial, error) {
		metadata, err := metadataFuture.Get(ctx)
		if err != nil {
			return cloudsqlconn.TLSMaterial{}, err
		}
		cert, err := certFuture.Get(ctx)
		if err != nil {
			return cloudsqlconn.TLSMaterial{}, err
		}
		return AssembleTLS(cert, metadata, authType, instanceName)
	})

	var (
		metadata cloudsqlconn.InstanceMetadata
		tlsMat   cloudsqlconn.TLSMaterial
		cert     tls.Certificate
		tok      *oauth2.Token
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { metadata, err = metadataFuture.Get(gctx); return })
	g.Go(func() (err error) { cert, err = certFuture.Get(gctx); return })
	g.Go(func() (err error) { tlsMat, err = tlsFuture.Get(gctx); return })
	g.Go(func() (err error) { tok, err = tokenFuture.Get(gctx); return })
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return cloudsqlconn.ConnectionInfo{}, cloudsqlconn.NewError(cloudsqlconn.KindCancelled, instanceName.String(), err,
				"connection info orchestration was cancelled")
		}
		return cloudsqlconn.ConnectionInfo{}, err
	}

	assert.Invariant(cert.Leaf != nil, "fetched ephemeral certificate must carry a parsed leaf")
	expiration := cert.Leaf.NotAfter
	if authType == cloudsqlconn.IAM && tok != nil && !tok.Expiry.IsZero() && tok.Expiry.Before(expiration) {
		expiration = tok.Expiry
	}

	slog.Debug("all futures done", "instance", instanceName.String())

	return cloudsqlconn.ConnectionInfo{
		InstanceName: instanceName,
		Metadata:     metadata,
		TLS:          tlsMat,
		Expiration:   expiration,
	}, nil
}
