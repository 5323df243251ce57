package client

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/tqt95/app-react-jpa/internal/data"

	"github.com/pkg/errors"
)

func getCertificates(sslCrtFile, sslKeyFile string) ([]tls.Certificate, error) {
	if sslCrtFile == "" || sslKeyFile == "" {
		return nil, nil
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "error while loading client certificate")
	}
	return []tls.Certificate{certificate}, nil
}

func getCaCert(sslCaFile string) (*x509.CertPool, error) {
	bytes, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "error while reading ca certificate")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(bytes) {
		return nil, errors.Errorf("no certificates found in %s", sslCaFile)
	}
	return caCertPool, nil
}

// getTransport trusts the given ca (and presents the client certificate
// when one is configured); without a ca the default transport is used.
func getTransport(sslCaFile, sslCrtFile, sslKeyFile string) (http.RoundTripper, error) {
	if sslCaFile == "" {
		return http.DefaultTransport, nil
	}
	caCertPool, err := getCaCert(sslCaFile)
	if err != nil {
		return nil, err
	}
	certificates, err := getCertificates(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, err
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// TLS versions below 1.2 are considered insecure
			// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: certificates,
		},
	}, nil
}

// responseError turns a failed response back into the error the service
// mapped to statusCode.
func responseError(statusCode int, body []byte) error {
	var e data.ErrorResponse

	if statusCode == http.StatusNotFound {
		return data.ErrEmployeeNotFound
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return errors.Errorf("status code: %d; %s", statusCode, string(body))
	}
	switch statusCode {
	default:
		return errors.Errorf("status code: %d; %s", statusCode, e.Error)
	case http.StatusBadRequest:
		if len(e.Fields) > 0 {
			return &data.ValidationError{Fields: e.Fields}
		}
		message := strings.TrimSuffix(e.Error, ": "+data.ErrBadRequest.Error())
		return errors.Wrap(data.ErrBadRequest, message)
	case http.StatusForbidden:
		return data.ErrMutateDisabled
	}
}
