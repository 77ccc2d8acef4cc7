package balancer

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/openlb/wrrlb/config"
	"github.com/openlb/wrrlb/retry"
	"github.com/openlb/wrrlb/stats"
	"github.com/openlb/wrrlb/swrr"
)

const (
	PROTO_HTTP         = "http"
	PROTO_HTTPS        = "https"
	DEFAULT_SERVERNAME = "localhost"
	STATUS_ENABLED     = "running"
	STATUS_DISABLED    = "stopped"
)

// VirtualServer listens on one address and proxies every request to a
// backend picked by the weighted selector. The pool is fixed when the
// virtual server is built.
type VirtualServer struct {
	sync.RWMutex
	Name       string
	Address    string
	ServerName string
	Protocol   string
	CertFile   string
	KeyFile    string
	Pool       *swrr.Selector

	server       *http.Server
	status       string
	stats        *stats.Stats
	rpLock       sync.Mutex
	ReverseProxy map[string]*httputil.ReverseProxy
}

// VirtualServerOption configures a VirtualServer.
type VirtualServerOption func(*VirtualServer) error

// NameOpt sets the name.
func NameOpt(name string) VirtualServerOption {
	return func(vs *VirtualServer) error {
		if name == "" {
			return ErrVirtualServerNameEmpty
		}
		vs.Name = name
		return nil
	}
}

// AddressOpt sets the listen address.
func AddressOpt(addr string) VirtualServerOption {
	return func(vs *VirtualServer) error {
		if addr == "" {
			return ErrVirtualServerAddressEmpty
		}
		vs.Address = addr
		return nil
	}
}

// ServerNameOpt sets the expected Host header, default "localhost".
func ServerNameOpt(serverName string) VirtualServerOption {
	return func(vs *VirtualServer) error {
		if serverName == "" {
			serverName = DEFAULT_SERVERNAME
		}
		vs.ServerName = serverName
		return nil
	}
}

// ProtocolOpt sets the protocol, default "http".
func ProtocolOpt(proto string) VirtualServerOption {
	return func(vs *VirtualServer) error {
		if proto == "" {
			proto = PROTO_HTTP
		}
		if proto != PROTO_HTTP && proto != PROTO_HTTPS {
			return ErrNotSupportedProto
		}
		vs.Protocol = proto
		return nil
	}
}

// TLSOpt sets the certificate used when the protocol is https.
func TLSOpt(certFile, keyFile string) VirtualServerOption {
	return func(vs *VirtualServer) error {
		vs.CertFile = certFile
		vs.KeyFile = keyFile
		return nil
	}
}

// PoolOpt builds the fixed weighted pool. sortPool reproduces the
// ascending-weight scan order.
func PoolOpt(servers []config.Server, sortPool bool) VirtualServerOption {
	return func(vs *VirtualServer) error {
		endpoints := make([]swrr.Endpoint, len(servers))
		for i, server := range servers {
			endpoints[i] = swrr.Endpoint{
				Addr:   server.Address,
				Weight: server.Weight,
			}
		}
		opts := []swrr.Option{}
		if sortPool {
			opts = append(opts, swrr.Ascending())
		}
		pool, err := swrr.New(endpoints, opts...)
		if err != nil {
			return err
		}
		vs.Pool = pool
		return nil
	}
}

// NewVirtualServer returns a VirtualServer object.
func NewVirtualServer(opts ...VirtualServerOption) (*VirtualServer, error) {
	vs := &VirtualServer{
		ServerName:   DEFAULT_SERVERNAME,
		Protocol:     PROTO_HTTP,
		status:       STATUS_DISABLED,
		stats:        stats.New(),
		ReverseProxy: make(map[string]*httputil.ReverseProxy),
	}
	for _, opt := range opts {
		if err := opt(vs); err != nil {
			return nil, err
		}
	}
	if vs.Name == "" {
		return nil, ErrVirtualServerNameEmpty
	}
	if vs.Address == "" {
		return nil, ErrVirtualServerAddressEmpty
	}
	return vs, nil
}

func (s *VirtualServer) proxy(addr string) (*httputil.ReverseProxy, error) {
	s.rpLock.Lock()
	defer s.rpLock.Unlock()

	rp, ok := s.ReverseProxy[addr]
	if !ok {
		target, err := url.Parse("http://" + addr)
		if err != nil {
			return nil, err
		}
		rp = httputil.NewSingleHostReverseProxy(target)
		s.ReverseProxy[addr] = rp
	}
	return rp, nil
}

type statusWriter struct {
	http.ResponseWriter
	code  int
	bytes uint64
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.code = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(data)
	w.bytes += uint64(n)
	return n, err
}

// ServeHTTP dispatches the request to a backend picked by the pool.
func (s *VirtualServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Host != s.ServerName {
		log.Errorf("Host not match, host=%s", r.Host)
		WriteError(w, ErrHostNotMatch)
		return
	}

	peer, ok := s.Pool.Next()
	if !ok {
		log.Errorf("No backend ready for %s", s.Name)
		WriteError(w, ErrNoBackendReady)
		return
	}
	s.stats.Pick(peer.Addr)

	rp, err := s.proxy(peer.Addr)
	if err != nil {
		log.Errorf("url.Parse peer=%s, error=%v", peer.Addr, err)
		WriteError(w, ErrInternalBalancer)
		return
	}

	sw := &statusWriter{ResponseWriter: w}
	rp.ServeHTTP(sw, r)

	inBytes := uint64(0)
	if r.ContentLength > 0 {
		inBytes = uint64(r.ContentLength)
	}
	s.stats.Inc(&stats.Data{
		Addr:       peer.Addr,
		StatusCode: strconv.Itoa(sw.code),
		InBytes:    inBytes,
		OutBytes:   sw.bytes,
	})
}

// Run starts the listener of the virtual server.
func (s *VirtualServer) Run() error {
	s.Lock()
	defer s.Unlock()

	if s.status == STATUS_ENABLED {
		return ErrVirtualServerAlreadyEnabled
	}

	s.server = &http.Server{
		Addr:    s.Address,
		Handler: retry.Retry(s),
	}
	go func(srv *http.Server) {
		var err error
		if s.Protocol == PROTO_HTTPS {
			err = srv.ListenAndServeTLS(s.CertFile, s.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("VirtualServer %s: %v", s.Name, err)
		}
	}(s.server)

	s.status = STATUS_ENABLED
	log.Infof("Listen %s, proto %s, pool [%v]", s.Address, s.Protocol, s.Pool)
	return nil
}

// Stop shuts the listener down.
func (s *VirtualServer) Stop() error {
	s.Lock()
	defer s.Unlock()

	if s.status == STATUS_DISABLED {
		return ErrVirtualServerAlreadyDisabled
	}
	if err := s.server.Close(); err != nil {
		return err
	}
	s.server = nil
	s.status = STATUS_DISABLED
	return nil
}

// Status returns the running state.
func (s *VirtualServer) Status() string {
	s.RLock()
	defer s.RUnlock()
	return s.status
}

// Stats returns the statistics of the virtual server.
func (s *VirtualServer) Stats() string {
	return "Pool-" + s.Name + "\n" + s.stats.String()
}
