// package consul resolves pool members from the consul catalog
//
// Every instance of a service becomes one pool member. The selection
// weight is read from the service meta key "weight" and defaults to 1.
package consul

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"
	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/config"
)

// Client wraps a consul client.
type Client struct {
	consul *api.Client
}

// New returns a Client object for the given consul address.
func New(addr string) (*Client, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr
	c, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{consul: c}, nil
}

// Pool queries the catalog once and returns the members registered
// for the service.
func (c *Client) Pool(service string) ([]config.Server, error) {
	instances, _, err := c.consul.Catalog().Service(service, "", nil)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("service ( %s ) was not found", service)
	}

	pool := make([]config.Server, 0, len(instances))
	for _, inst := range instances {
		addr := inst.ServiceAddress
		if addr == "" {
			addr = inst.Address
		}
		weight := 1
		if val, ok := inst.ServiceMeta["weight"]; ok {
			w, err := strconv.Atoi(val)
			if err != nil {
				log.Errorf("consul: strconv.Atoi(%q) err=%v", val, err)
			} else {
				weight = w
			}
		}
		pool = append(pool, config.Server{
			Address: fmt.Sprintf("%s:%d", addr, inst.ServicePort),
			Weight:  weight,
		})
	}
	return pool, nil
}

// Close is a no-op, the consul client holds no connection.
func (c *Client) Close() error {
	return nil
}
