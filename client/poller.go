package client

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval matches the web UI's 30-second status refresh.
const DefaultPollInterval = 30 * time.Second

// StatusPoller periodically fetches a user's task statuses and reports
// changes through callbacks. Teardown is deterministic: cancel the context
// passed to Run and the loop exits. Transient fetch errors are logged and
// skipped until the next tick; there is no backoff or retry.
type StatusPoller struct {
	client      *Client
	userAddress string
	interval    time.Duration
	kick        chan struct{}
	verified    map[string]bool

	// OnStatus receives every successfully fetched task → status map.
	OnStatus func(statuses map[string]string)
	// OnVerified fires once per task when it first reaches verified, so a
	// caller can permanently disable the task's action control.
	OnVerified func(task string)
}

func NewStatusPoller(client *Client, userAddress string, interval time.Duration) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		client:      client,
		userAddress: userAddress,
		interval:    interval,
		kick:        make(chan struct{}, 1),
		verified:    make(map[string]bool),
	}
}

// Kick requests an immediate one-shot poll, e.g. when the user identity
// becomes available before the first scheduled tick. Non-blocking; a kick
// while one is already queued is folded into it.
func (p *StatusPoller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. Blocking; run it on its own goroutine.
func (p *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Status polling stopped.")
			return
		case <-p.kick:
			p.poll(ctx)
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	statuses, err := p.client.Status(ctx, p.userAddress)
	if err != nil {
		log.Printf("status poll failed for %s: %v", p.userAddress, err)
		return
	}

	if p.OnStatus != nil {
		p.OnStatus(statuses)
	}

	for task, status := range statuses {
		if status == "verified" && !p.verified[task] {
			p.verified[task] = true
			if p.OnVerified != nil {
				p.OnVerified(task)
			}
		}
	}
}
