package swrr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Known errors.
var (
	ErrEmptyPool      = errors.New("pool must contain at least one endpoint")
	ErrNegativeWeight = errors.New("endpoint weight must not be negative")
)

// Endpoint is a backend server with a relative selection weight.
type Endpoint struct {
	Addr   string
	Weight int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s: (w=%d)", e.Addr, e.Weight)
}

// Selector picks endpoints in weighted round-robin order.
// The pool is fixed at construction, all cursor state lives inside
// the selector, and Next is safe for concurrent use.
type Selector struct {
	sync.Mutex
	endpoints []Endpoint
	gcd       int
	max       int
	count     int
	last      int
	cw        int
}

// Option configures a Selector at construction.
type Option func(*Selector)

// Ascending sorts the pool by ascending weight (stable), which
// reproduces the tie-break pattern of balancers that order the pool
// before scanning. Aggregate selection frequencies are identical
// either way.
func Ascending() Option {
	return func(s *Selector) {
		sort.SliceStable(s.endpoints, func(i, j int) bool {
			return s.endpoints[i].Weight < s.endpoints[j].Weight
		})
	}
}

// New returns a Selector over the given endpoints. The input slice is
// copied and must not be mutated by the caller afterwards; the pool
// never changes for the lifetime of the selector.
func New(endpoints []Endpoint, opts ...Option) (*Selector, error) {
	if len(endpoints) == 0 {
		return nil, ErrEmptyPool
	}
	for _, e := range endpoints {
		if e.Weight < 0 {
			return nil, ErrNegativeWeight
		}
	}

	s := &Selector{
		endpoints: make([]Endpoint, len(endpoints)),
		count:     len(endpoints),
		last:      -1,
		cw:        0,
	}
	copy(s.endpoints, endpoints)

	for _, opt := range opts {
		opt(s)
	}

	for _, e := range s.endpoints {
		s.gcd = gcd(s.gcd, e.Weight)
		if e.Weight > s.max {
			s.max = e.Weight
		}
	}
	return s, nil
}

// Next returns the next endpoint of the weighted sequence. The second
// return value is false when no endpoint is available, which happens
// only when every weight in the pool is zero.
//
// Each cycle over the pool lowers the weight threshold by the gcd of
// all weights; an endpoint qualifies once its weight reaches the
// threshold. Over sum(weights)/gcd calls every endpoint is picked
// exactly weight/gcd times and the sequence then repeats.
func (s *Selector) Next() (Endpoint, bool) {
	s.Lock()
	defer s.Unlock()

	if s.max == 0 {
		return Endpoint{}, false
	}

	for {
		s.last = (s.last + 1) % s.count
		if s.last == 0 {
			s.cw -= s.gcd
			if s.cw <= 0 {
				s.cw = s.max
			}
		}
		if s.endpoints[s.last].Weight >= s.cw {
			return s.endpoints[s.last], true
		}
	}
}

// Size returns the number of endpoints in the pool.
func (s *Selector) Size() int {
	return s.count
}

func (s *Selector) String() string {
	result := make([]string, 0, s.count)
	for _, e := range s.endpoints {
		result = append(result, e.String())
	}
	return strings.Join(result, ", ")
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
