// package etcd resolves pool members stored in etcd
//
// data format, one key per pool member:
//
//	/<prefix>/virtualserver/<virtualserver_name>/pool/<peer_address> -> <weight>
//
// A value that is not a valid integer counts as weight 1.
package etcd

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/etcd/clientv3"
	"github.com/coreos/etcd/pkg/transport"
	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/config"
)

const requestTimeout = 5 * time.Second

// key label
const (
	VSPrefix   = "virtualserver"
	PoolPrefix = "pool"
)

// Client wraps a etcd client.
type Client struct {
	prefix string
	cli    *clientv3.Client
}

// New returns a Client object.
func New(endpoints, prefix, certFile, keyFile, trustedCAFile string) (*Client, error) {
	var err error
	var tlsConfig *tls.Config
	if certFile != "" && keyFile != "" {
		tlsInfo := transport.TLSInfo{
			CertFile:      certFile,
			KeyFile:       keyFile,
			TrustedCAFile: trustedCAFile,
		}
		tlsConfig, err = tlsInfo.ClientConfig()
		if err != nil {
			return nil, err
		}
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   strings.Split(endpoints, ","),
		DialTimeout: 5 * time.Second,
		TLS:         tlsConfig,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		prefix: prefix,
		cli:    cli,
	}, nil
}

func (c *Client) poolPrefix(service string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", c.prefix, VSPrefix, service, PoolPrefix)
}

// Pool reads the member keys of the service once.
func (c *Client) Pool(service string) ([]config.Server, error) {
	prefix := c.poolPrefix(service)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	resp, err := c.cli.Get(ctx, prefix, clientv3.WithPrefix())
	cancel()
	if err != nil {
		return nil, err
	}

	pool := []config.Server{}
	for _, kv := range resp.Kvs {
		addr := strings.TrimPrefix(string(kv.Key), prefix)
		if addr == "" || strings.Contains(addr, "/") {
			log.Errorf("etcd: unidentified key: %q", string(kv.Key))
			continue
		}
		weight, err := strconv.Atoi(string(kv.Value))
		if err != nil {
			log.Errorf("etcd: strconv.Atoi(%q) err=%v", string(kv.Value), err)
			weight = 1
		}
		pool = append(pool, config.Server{Address: addr, Weight: weight})
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("service ( %s ) was not found under %s", service, prefix)
	}
	return pool, nil
}

// Close tears the etcd connection down.
func (c *Client) Close() error {
	return c.cli.Close()
}
