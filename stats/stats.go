package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Backend holds the counters of a single pool member.
type Backend struct {
	Picks      uint64
	StatusCode map[string]uint64
	InBytes    uint64
	OutBytes   uint64
}

func newBackend() *Backend {
	return &Backend{
		StatusCode: map[string]uint64{},
	}
}

// Stats aggregates per-backend counters of a virtual server.
type Stats struct {
	sync.RWMutex
	backends map[string]*Backend
}

// New returns a Stats object.
func New() *Stats {
	return &Stats{
		backends: map[string]*Backend{},
	}
}

// Data is one proxied request outcome.
type Data struct {
	Addr       string
	StatusCode string
	InBytes    uint64
	OutBytes   uint64
}

// Pick counts one selection of addr.
func (s *Stats) Pick(addr string) {
	s.Lock()
	defer s.Unlock()

	b, ok := s.backends[addr]
	if !ok {
		b = newBackend()
		s.backends[addr] = b
	}
	b.Picks += 1
}

// Inc counts one proxied request outcome.
func (s *Stats) Inc(d *Data) {
	s.Lock()
	defer s.Unlock()

	b, ok := s.backends[d.Addr]
	if !ok {
		b = newBackend()
		s.backends[d.Addr] = b
	}
	b.StatusCode[d.StatusCode] += 1
	b.InBytes += d.InBytes
	b.OutBytes += d.OutBytes
}

// Picks returns the selection count of addr.
func (s *Stats) Picks(addr string) uint64 {
	s.RLock()
	defer s.RUnlock()

	if b, ok := s.backends[addr]; ok {
		return b.Picks
	}
	return 0
}

func sortedMapString(dict map[string]uint64) string {
	keys := []string{}
	for key := range dict {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	result := []string{}
	for _, key := range keys {
		result = append(result, fmt.Sprintf("%s:%d", key, dict[key]))
	}

	return strings.Join(result, ", ")
}

const (
	PICKS    = "picks"
	STATUS   = "status_code"
	INBYTES  = "recv_bytes"
	OUTBYTES = "send_bytes"
)

func (s *Stats) String() string {
	s.RLock()
	defer s.RUnlock()

	addrs := []string{}
	for addr := range s.backends {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	toS := func(head string, msg interface{}) string {
		return fmt.Sprintf("%s: %v", head, msg)
	}

	result := []string{}
	for _, addr := range addrs {
		b := s.backends[addr]
		result = append(result,
			addr,
			toS(PICKS, b.Picks),
			toS(STATUS, sortedMapString(b.StatusCode)),
			toS(INBYTES, b.InBytes),
			toS(OUTBYTES, b.OutBytes),
			"------")
	}

	return strings.Join(result, "\n")
}
