// Package tlsmaterial loads the server's PKCS#12 identity certificate and
// each client's pinned per-node DER certificate.
package tlsmaterial

import (
	"crypto/tls"
	"os"

	"golang.org/x/crypto/pkcs12"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// LoadServerIdentity decodes a PKCS#12 bundle into a tls.Certificate for
// tls.Config.Certificates.
func LoadServerIdentity(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, concurrerrors.Setup("reading PKCS#12 bundle", err)
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, concurrerrors.Setup("decoding PKCS#12 bundle", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

// ServerTLSConfig builds the listener's TLS configuration: TLS 1.2+
// presenting the loaded identity certificate.
func ServerTLSConfig(identity tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{identity},
		MinVersion:   tls.VersionTLS12,
	}
}
