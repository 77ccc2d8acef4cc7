// Package service wires configuration, service discovery, controller
// and balancer together.
package service

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/balancer"
	"github.com/openlb/wrrlb/config"
	"github.com/openlb/wrrlb/controller"
	sd "github.com/openlb/wrrlb/discovery"
)

// Service is the whole load balancer.
type Service struct {
	controller *controller.Controller
	balancer   *balancer.Balancer
}

// New returns a Service object built from the config file.
func New(configFile string) (*Service, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	sdCfg := c.ServiceDiscovery
	opts := []sd.ServiceDiscoveryOption{
		sd.TypeOpt(sdCfg.Type),
		sd.ClusterOpt(sdCfg.Cluster),
		sd.SecurityOpt(sdCfg.CertFile, sdCfg.KeyFile, sdCfg.TrustedCAFile),
	}
	if sdCfg.Type == "etcd" {
		// the key prefix only applies to etcd
		opts = append(opts, sd.PrefixOpt(sdCfg.Prefix))
	}
	dis, err := sd.New(opts...)
	if err != nil {
		log.Warnf("New ServiceDiscovery err=%v", err)
	}

	// the pool of every virtual server is fixed once the balancer is
	// built, so discovery runs before, not alongside
	if err := dis.Resolve(c.VServers); err != nil {
		return nil, err
	}

	ctl := controller.New(&c.Controller)
	b, err := balancer.New(c.VServers)
	if err != nil {
		return nil, err
	}

	return &Service{
		controller: ctl,
		balancer:   b,
	}, nil
}

// Run starts the service and blocks until a terminating signal.
func (s *Service) Run() error {
	log.Infof("Starting...")
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, os.Kill, syscall.SIGTERM)

	s.controller.Run(s.balancer)
	if err := s.balancer.Run(); err != nil {
		return err
	}

	sig := <-sigC
	log.Infof("Caught signal %v, exiting...", sig)

	return s.balancer.Stop()
}
