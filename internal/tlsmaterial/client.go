package tlsmaterial

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// LoadNodeCertificate loads the DER-encoded certificate pinned for domain
// from certsDir/<domain>.der.
func LoadNodeCertificate(certsDir, domain string) (*x509.Certificate, error) {
	path := filepath.Join(certsDir, domain+".der")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, concurrerrors.Setup("reading pinned certificate for "+domain, err)
	}
	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, concurrerrors.Setup("parsing pinned certificate for "+domain, err)
	}
	return cert, nil
}

// ClientTLSConfig builds the Connection Slot's TLS configuration: TLS 1.2+
// trusting only the pinned certificate for domain, verified against the SNI
// hostname domain.
func ClientTLSConfig(cert *x509.Certificate, domain string) *tls.Config {
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	return &tls.Config{
		RootCAs:    pool,
		ServerName: domain,
		MinVersion: tls.VersionTLS12,
	}
}
