// Command cloudsqlconn-probe performs a single connectivity diagnostic
// against a configured Cloud SQL instance: it resolves credentials, fetches
// instance metadata and an ephemeral client certificate, assembles TLS
// material, and reports the result. It also serves the same result over
// HTTP for use as a liveness/readiness style check.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	cloudsqlconn "github.com/sufield/cloudsqlconn"
	"github.com/sufield/cloudsqlconn/internal/probeconfig"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	configPath := flag.String("config", "probe.yaml", "Path to probe config file")
	listenAddr := flag.String("addr", ":8090", "HTTP listen address for the /healthz probe endpoint")
	once := flag.Bool("once", false, "Run a single probe, print the result, and exit instead of serving HTTP")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("cloudsqlconn-probe %s (%s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := probeconfig.Load(*configPath)
	if err != nil {
		slog.Error("failed to load probe config", "err", err)
		os.Exit(1)
	}

	connector, instanceName, err := buildConnector(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to build connector", "err", err)
		os.Exit(1)
	}

	p := &prober{
		connector:    connector,
		instanceName: instanceName,
		tokens:       cloudsqlconn.StaticToken(nil),
	}
	keyPair, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		slog.Error("failed to generate ephemeral key pair", "err", err)
		os.Exit(1)
	}
	p.keyPair = keyPair

	if *once {
		result := p.probe(context.Background())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			slog.Error("failed to encode probe result", "err", err)
		}
		if result.Err != "" {
			os.Exit(1)
		}
		return
	}

	r := chi.NewRouter()
	r.Get("/healthz", p.handleHealthz)

	slog.Info("cloudsqlconn-probe listening", "addr", *listenAddr, "instance", instanceName.String())
	if err := http.ListenAndServe(*listenAddr, r); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func buildConnector(ctx context.Context, cfg probeconfig.Config) (*cloudsqlconn.InstanceConnector, cloudsqlconn.InstanceName, error) {
	instanceName, err := cloudsqlconn.ParseInstanceName(cfg.InstanceConnectionName)
	if err != nil {
		return nil, cloudsqlconn.InstanceName{}, err
	}

	opts := []cloudsqlconn.ConnectorConfigOption{}
	if cfg.IAMAuthN {
		opts = append(opts, cloudsqlconn.WithIAMAuthN())
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, cloudsqlconn.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.AdminRootURL != "" {
		opts = append(opts, cloudsqlconn.WithAdminRootURL(cfg.AdminRootURL))
	}

	connectorConfig, err := cloudsqlconn.NewConnectorConfig(opts...)
	if err != nil {
		return nil, cloudsqlconn.InstanceName{}, err
	}
	connector, err := cloudsqlconn.NewInstanceConnector(ctx, connectorConfig)
	if err != nil {
		return nil, cloudsqlconn.InstanceName{}, err
	}
	return connector, instanceName, nil
}

// probeResult is the JSON shape returned by a single diagnostic run.
type probeResult struct {
	Instance   string    `json:"instance"`
	OK         bool      `json:"ok"`
	Err        string    `json:"error,omitempty"`
	Expiration time.Time `json:"expiration,omitempty"`
	PublicIP   string    `json:"public_ip,omitempty"`
	PrivateIP  string    `json:"private_ip,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

type prober struct {
	connector    *cloudsqlconn.InstanceConnector
	instanceName cloudsqlconn.InstanceName
	tokens       cloudsqlconn.TokenSupplier
	keyPair      *rsa.PrivateKey

	mu   sync.Mutex
	last probeResult
}

func (p *prober) probe(ctx context.Context) probeResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result := probeResult{Instance: p.instanceName.String(), CheckedAt: timeNow()}
	info, err := p.connector.GetConnectionInfo(ctx, p.instanceName, p.tokens, p.keyPair)
	if err != nil {
		result.Err = err.Error()
		p.record(result)
		return result
	}

	result.OK = true
	result.Expiration = info.Expiration
	if addr, ok := info.Addr(cloudsqlconn.PUBLIC); ok {
		result.PublicIP = addr
	}
	if addr, ok := info.Addr(cloudsqlconn.PRIVATE); ok {
		result.PrivateIP = addr
	}
	p.record(result)
	return result
}

func (p *prober) record(r probeResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = r
}

func (p *prober) handleHealthz(w http.ResponseWriter, r *http.Request) {
	result := p.probe(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !result.OK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to write probe response", "err", err)
	}
}

// timeNow exists so probe timestamps are produced through one call site.
func timeNow() time.Time { return time.Now() }
