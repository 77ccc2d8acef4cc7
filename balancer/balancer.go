package balancer

import (
	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/config"
)

// Balancer is the set of virtual servers.
type Balancer struct {
	VServers []*VirtualServer
}

// New returns a Balancer object.
func New(vss []config.VirtualServer) (*Balancer, error) {
	ss := make([]*VirtualServer, len(vss))
	for i, vs := range vss {
		s, err := NewVirtualServer(
			NameOpt(vs.Name),
			AddressOpt(vs.Address),
			ServerNameOpt(vs.ServerName),
			ProtocolOpt(vs.Protocol),
			TLSOpt(vs.CertFile, vs.KeyFile),
			PoolOpt(vs.Pool, vs.SortPool),
		)
		if err != nil {
			return nil, err
		}
		log.Infof("VirtualServer %s: listen %s, proto %s, pool [%v]",
			s.Name, s.Address, s.Protocol, s.Pool)
		ss[i] = s
	}

	return &Balancer{VServers: ss}, nil
}

// FindVirtualServer looks up a virtual server by name.
func (b *Balancer) FindVirtualServer(name string) (*VirtualServer, error) {
	for _, vs := range b.VServers {
		if vs.Name == name {
			return vs, nil
		}
	}
	return nil, ErrVirtualServerNotFound
}

// Run starts all virtual servers.
func (b *Balancer) Run() error {
	for _, vs := range b.VServers {
		if err := vs.Run(); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops all virtual servers.
func (b *Balancer) Stop() error {
	for _, vs := range b.VServers {
		if err := vs.Stop(); err != nil {
			return err
		}
	}
	return nil
}
