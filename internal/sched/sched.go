// Package sched implements the deterministic worker-selection function
// used to spread compilation sessions across a fleet: pick(hosts, key).
package sched

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Localhost is the sentinel host value that tells a client to run the
// compilation locally instead of shipping it over the wire.
const Localhost = "localhost"

// maxUint64Plus1 is 2^64, as a float64, used to normalize a 64-bit hash
// into (0, 1].
const maxUint64Plus1 = 1 << 64

// HostSpec is (host, port, weight). Its textual form is HOST:PORT/WEIGHT;
// the weight suffix is optional and defaults to 1.
type HostSpec struct {
	Host   string
	Port   int
	Weight int
}

func (h HostSpec) String() string {
	return fmt.Sprintf("%s:%d/%d", h.Host, h.Port, h.Weight)
}

// IsLocal reports whether h is the localhost sentinel. This is a plain
// string compare on the host field, preserved exactly rather than
// resolved against loopback addresses.
func (h HostSpec) IsLocal() bool {
	return h.Host == Localhost
}

// ParseHostSpec parses "HOST:PORT" or "HOST:PORT/WEIGHT".
func ParseHostSpec(s string) (HostSpec, error) {
	weight := 1
	rest := s
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		w, err := strconv.Atoi(s[i+1:])
		if err != nil || w <= 0 {
			return HostSpec{}, fmt.Errorf("sched: invalid weight in %q", s)
		}
		weight = w
		rest = s[:i]
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return HostSpec{}, fmt.Errorf("sched: missing port in %q", s)
	}
	port, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return HostSpec{}, fmt.Errorf("sched: invalid port in %q", s)
	}
	return HostSpec{Host: rest[:i], Port: port, Weight: weight}, nil
}

// Pick deterministically selects one of hosts for key. It uses weighted
// rendezvous hashing (HRW): every host's score is computed independently
// from (host, key), and the highest score wins. This makes the outcome
// stable under instance membership changes and, in expectation over
// uniformly distributed keys, proportional to each host's weight.
func Pick(hosts []HostSpec, key string) HostSpec {
	best := hosts[0]
	if len(hosts) == 1 {
		return best
	}
	bestScore := rendezvousScore(best, key)
	for _, h := range hosts[1:] {
		if score := rendezvousScore(h, key); score > bestScore {
			bestScore = score
			best = h
		}
	}
	return best
}

func rendezvousScore(h HostSpec, key string) float64 {
	sum := xxhash.Sum64String(h.Host + ":" + strconv.Itoa(h.Port) + "|" + key)
	// Map the hash to (0, 1]; the classic HRW weighting is
	// -weight / ln(u), which skews the score upward for higher-weight
	// hosts while remaining a pure function of (host, key).
	u := (float64(sum) + 1) / maxUint64Plus1
	return -float64(h.Weight) / math.Log(u)
}
