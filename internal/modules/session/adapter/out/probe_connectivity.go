package out

import (
	"context"
	"net/http"
	"sync"
	"time"

	sessionout "focusdo/internal/modules/session/port/out"
)

const probeTimeout = 5 * time.Second

// ProbeConnectivity decides online/offline by polling a cheap health
// endpoint. Subscribers only hear transitions, not every probe.
type ProbeConnectivity struct {
	probeURL   string
	interval   time.Duration
	httpClient *http.Client

	mu     sync.Mutex
	online bool
	subs   []chan bool
}

var _ sessionout.Connectivity = (*ProbeConnectivity)(nil)

func NewProbeConnectivity(probeURL string, interval time.Duration) *ProbeConnectivity {
	return &ProbeConnectivity{
		probeURL:   probeURL,
		interval:   interval,
		httpClient: &http.Client{Timeout: probeTimeout},
	}
}

func (p *ProbeConnectivity) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *ProbeConnectivity) Subscribe() <-chan bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	// buffered so a slow consumer cannot stall the probe loop; transitions
	// are rare enough that the buffer never realistically fills
	ch := make(chan bool, 8)
	p.subs = append(p.subs, ch)
	return ch
}

// Run probes immediately, then on every tick, until ctx is done.
func (p *ProbeConnectivity) Run(ctx context.Context) {
	p.update(p.probe(ctx))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.update(p.probe(ctx))
		}
	}
}

func (p *ProbeConnectivity) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

func (p *ProbeConnectivity) update(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if online == p.online {
		return
	}
	p.online = online
	for _, ch := range p.subs {
		select {
		case ch <- online:
		default:
		}
	}
}
