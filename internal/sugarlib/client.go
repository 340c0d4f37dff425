package sugarlib

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// GetClient returns an HTTP client that also trusts the certificates in the
// 'cacert' PEM bundle, when one is given
func GetClient(cacert string) (http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cacert != "" {
		data, err := os.ReadFile(cacert)
		if err != nil {
			return http.Client{}, fmt.Errorf(
				"could not read CA bundle: %w", err,
			)
		}
		certPool, err := x509.SystemCertPool()
		if err != nil || certPool == nil {
			certPool = x509.NewCertPool()
		}
		if !certPool.AppendCertsFromPEM(data) {
			return http.Client{}, fmt.Errorf(
				"could not load certificates from file '%s'",
				cacert,
			)
		}

		transport.TLSClientConfig = &tls.Config{RootCAs: certPool}
	}

	return http.Client{Transport: transport}, nil
}
