// Package discovery resolves the initial pool members of a virtual
// server from an external registry (consul or etcd) once at startup.
//
// The pool of a virtual server is fixed for the lifetime of the
// balancer, so unlike a watch based discovery there is no update
// loop: the registry is queried exactly once, before the selector of
// the virtual server is built.
package discovery

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/config"
	"github.com/openlb/wrrlb/discovery/consul"
	"github.com/openlb/wrrlb/discovery/etcd"
)

// Resolver returns the pool members registered for a service.
type Resolver interface {
	Pool(service string) ([]config.Server, error)
	Close() error
}

// ServiceDiscovery holds the registry settings.
type ServiceDiscovery struct {
	Enabled       bool
	Type          string
	Cluster       string
	Prefix        string
	CertFile      string
	KeyFile       string
	TrustedCAFile string
}

// ServiceDiscoveryOption configures a ServiceDiscovery.
type ServiceDiscoveryOption func(*ServiceDiscovery) error

// TypeOpt sets the registry type, "consul" or "etcd".
func TypeOpt(t string) ServiceDiscoveryOption {
	return func(sd *ServiceDiscovery) error {
		if t != "consul" && t != "etcd" {
			return fmt.Errorf("service discovery type %q currently not supported", t)
		}
		sd.Type = t
		return nil
	}
}

// ClusterOpt sets the registry address.
func ClusterOpt(c string) ServiceDiscoveryOption {
	return func(sd *ServiceDiscovery) error {
		if c == "" {
			return fmt.Errorf("Cluster can not be empty")
		}
		sd.Cluster = c
		return nil
	}
}

// PrefixOpt sets the etcd key prefix.
func PrefixOpt(p string) ServiceDiscoveryOption {
	return func(sd *ServiceDiscovery) error {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			return fmt.Errorf("Prefix can not be empty")
		}
		if p[0] != '/' {
			return fmt.Errorf("prefix not start with '/'")
		}
		if strings.LastIndex(p, "/") != 0 {
			return fmt.Errorf("prefix contains '/'")
		}
		sd.Prefix = p
		return nil
	}
}

// SecurityOpt sets the client TLS files.
func SecurityOpt(certFile, keyFile, trustedCAFile string) ServiceDiscoveryOption {
	return func(sd *ServiceDiscovery) error {
		if certFile == "" && keyFile == "" {
			log.Infof("Service discovery security (https) is disabled")
			return nil
		}
		if _, err := os.Stat(certFile); err != nil {
			return fmt.Errorf("Cert file '%s' does not exist", certFile)
		}
		if _, err := os.Stat(keyFile); err != nil {
			return fmt.Errorf("Key file '%s' does not exist", keyFile)
		}
		sd.CertFile = certFile
		sd.KeyFile = keyFile
		sd.TrustedCAFile = trustedCAFile
		return nil
	}
}

// New returns a ServiceDiscovery object.
func New(opts ...ServiceDiscoveryOption) (*ServiceDiscovery, error) {
	sd := &ServiceDiscovery{Enabled: false}
	for _, opt := range opts {
		if err := opt(sd); err != nil {
			return sd, err
		}
	}
	sd.Enabled = true
	return sd, nil
}

func (sd *ServiceDiscovery) resolver() (Resolver, error) {
	switch sd.Type {
	case "consul":
		return consul.New(sd.Cluster)
	case "etcd":
		return etcd.New(sd.Cluster, sd.Prefix, sd.CertFile, sd.KeyFile, sd.TrustedCAFile)
	}
	return nil, fmt.Errorf("service discovery type %q currently not supported", sd.Type)
}

// Resolve fills the pool of every virtual server that has no members
// configured statically. Virtual servers with a configured pool are
// left untouched. Called once, before the balancer is built.
func (sd *ServiceDiscovery) Resolve(vss []config.VirtualServer) error {
	if !sd.Enabled {
		log.Infof("ServiceDiscovery is not enabled")
		return nil
	}

	r, err := sd.resolver()
	if err != nil {
		return err
	}
	defer r.Close()

	for i := range vss {
		vs := &vss[i]
		if len(vs.Pool) > 0 {
			continue
		}
		pool, err := r.Pool(vs.Name)
		if err != nil {
			return fmt.Errorf("resolve pool of %q: %v", vs.Name, err)
		}
		log.Infof("Resolved pool of %s: %v", vs.Name, pool)
		vs.Pool = pool
	}
	return nil
}
