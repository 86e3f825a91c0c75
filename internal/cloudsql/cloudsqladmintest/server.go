// Package cloudsqladmintest provides an in-process double for the two Cloud
// SQL Admin API endpoints this module depends on, so tests exercise the real
// wire contract (JSON request/response shapes) without live network access.
package cloudsqladmintest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
)

// Instance is the fixture data this server hands back for one instance
// connection name.
type Instance struct {
	Region          string
	BackendType     string
	DatabaseVersion string
	PublicIP        string
	PrivateIP       string
	DNSName         string
	CACert          *x509.Certificate
	CAKey           *rsa.PrivateKey
	// CertTTL controls how far in the future minted ephemeral certificates
	// expire; defaults to one hour if zero.
	CertTTL time.Duration
}

// Server is an httptest-backed Cloud SQL Admin API double.
type Server struct {
	*httptest.Server
	instances        map[string]Instance
	unconfiguredAPIs map[string]bool
}

// New starts a Server double with no instances registered; add fixtures via
// AddInstance before issuing requests.
func New() *Server {
	s := &Server{
		instances:        make(map[string]Instance),
		unconfiguredAPIs: make(map[string]bool),
	}
	r := chi.NewRouter()
	r.Get("/sql/v1beta4/projects/{project}/instances/{instance}/connectSettings", s.handleConnectSettings)
	r.Post("/sql/v1beta4/projects/{project}/instances/{instance}:generateEphemeralCert", s.handleGenerateEphemeralCert)
	s.Server = httptest.NewServer(r)
	return s
}

// AddInstance registers inst under "project:instance", the same compound
// key instanceName.Project()+":"+instanceName.Instance() would produce.
func (s *Server) AddInstance(project, instance string, inst Instance) {
	s.instances[project+":"+instance] = inst
}

// SetAPIDisabled makes every request for project fail with the Admin API's
// "accessNotConfigured" reason, as if the Cloud SQL Admin API had never been
// enabled for that project.
func (s *Server) SetAPIDisabled(project string) {
	s.unconfiguredAPIs[project] = true
}

func (s *Server) handleConnectSettings(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	instance := chi.URLParam(r, "instance")
	if s.unconfiguredAPIs[project] {
		http.Error(w, `{"error":{"errors":[{"reason":"accessNotConfigured"}]}}`, http.StatusForbidden)
		return
	}
	inst, ok := s.instances[project+":"+instance]
	if !ok {
		http.Error(w, `{"error":{"errors":[{"reason":"notAuthorized"}]}}`, http.StatusNotFound)
		return
	}

	type ipMapping struct {
		Type      string `json:"type"`
		IpAddress string `json:"ipAddress"`
	}
	type sslCert struct {
		Cert string `json:"cert"`
	}
	resp := struct {
		Region          string      `json:"region"`
		BackendType     string      `json:"backendType"`
		DatabaseVersion string      `json:"databaseVersion"`
		IpAddresses     []ipMapping `json:"ipAddresses"`
		DnsName         string      `json:"dnsName,omitempty"`
		ServerCaCert    sslCert     `json:"serverCaCert"`
	}{
		Region:          inst.Region,
		BackendType:     inst.BackendType,
		DatabaseVersion: inst.DatabaseVersion,
		DnsName:         inst.DNSName,
		ServerCaCert:    sslCert{Cert: string(encodeCertPEM(inst.CACert))},
	}
	if inst.PublicIP != "" {
		resp.IpAddresses = append(resp.IpAddresses, ipMapping{Type: "PRIMARY", IpAddress: inst.PublicIP})
	}
	if inst.PrivateIP != "" {
		resp.IpAddresses = append(resp.IpAddresses, ipMapping{Type: "PRIVATE", IpAddress: inst.PrivateIP})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGenerateEphemeralCert(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	instance := chi.URLParam(r, "instance")
	if s.unconfiguredAPIs[project] {
		http.Error(w, `{"error":{"errors":[{"reason":"accessNotConfigured"}]}}`, http.StatusForbidden)
		return
	}
	inst, ok := s.instances[project+":"+instance]
	if !ok {
		http.Error(w, `{"error":{"errors":[{"reason":"notAuthorized"}]}}`, http.StatusNotFound)
		return
	}

	var req struct {
		PublicKey   string `json:"public_key"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	block, _ := pem.Decode([]byte(req.PublicKey))
	if block == nil {
		http.Error(w, "invalid public key PEM", http.StatusBadRequest)
		return
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		http.Error(w, "invalid public key DER", http.StatusBadRequest)
		return
	}

	ttl := inst.CertTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	certDER, err := mintClientCert(project+":"+instance, pub, inst.CACert, inst.CAKey, ttl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := struct {
		EphemeralCert struct {
			Cert string `json:"cert"`
		} `json:"ephemeralCert"`
	}{}
	resp.EphemeralCert.Cert = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func encodeCertPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

func mintClientCert(commonName string, pub any, caCert *x509.Certificate, caKey *rsa.PrivateKey, ttl time.Duration) ([]byte, error) {
	tmpl := &x509.Certificate{
		SerialNumber: serialNumber(),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(ttl),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	return x509.CreateCertificate(rand.Reader, tmpl, caCert, pub, caKey)
}

var serial int64

func serialNumber() *big.Int {
	serial++
	return big.NewInt(serial)
}
