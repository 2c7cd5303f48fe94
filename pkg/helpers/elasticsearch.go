package helpers

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the search client. Username and Password are optional basic auth.
type ESOptions struct {
	Addrs    []string
	Username string
	Password string
	Timeout  time.Duration // dial and response-header timeout, default 5s
}

// NewESClient returns nil without error when no address is configured, which disables search.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	if len(opts.Addrs) == 0 {
		return nil, nil
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: opts.Addrs,
		Username:  opts.Username,
		Password:  opts.Password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}
