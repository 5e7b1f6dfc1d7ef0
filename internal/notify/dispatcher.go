package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"call-cascade/internal/cascade"

	"golang.org/x/sync/semaphore"
)

const headerWorkflowSecret = "X-Workflow-Secret"

// Guard suppresses duplicate dispatch for the same call, e.g. when the
// platform re-delivers the final status callback. Best-effort: a guard
// error must not stop the (single) dispatch.
type Guard interface {
	// FirstDispatch reports whether callSID has not been dispatched yet,
	// atomically marking it dispatched when it has not.
	FirstDispatch(ctx context.Context, callSID string) (bool, error)
}

// Dispatcher delivers exhaustion notifications to the workflow endpoint.
//
// Delivery is fire-and-forget: NotifyExhausted never blocks the webhook
// path, failures are logged and never escalated, and there is no retry,
// queue, or durability. An empty endpoint disables delivery entirely.
type Dispatcher struct {
	endpoint string
	secret   string

	client  *http.Client
	timeout time.Duration

	// inflight bounds detached deliveries; an event arriving while the
	// bound is saturated is dropped with a log line, not queued.
	inflight *semaphore.Weighted

	guard Guard
	log   *slog.Logger

	wg sync.WaitGroup
}

// Options tune the dispatcher. Zero values get safe defaults.
type Options struct {
	Client      *http.Client
	Timeout     time.Duration
	MaxInflight int64
	Guard       Guard
	Logger      *slog.Logger
}

func NewDispatcher(endpoint, secret string, opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.MaxInflight <= 0 {
		opts.MaxInflight = 8
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dispatcher{
		endpoint: endpoint,
		secret:   secret,
		client:   opts.Client,
		timeout:  opts.Timeout,
		inflight: semaphore.NewWeighted(opts.MaxInflight),
		guard:    opts.Guard,
		log:      opts.Logger,
	}
}

// Enabled reports whether a workflow endpoint is configured.
func (d *Dispatcher) Enabled() bool { return d.endpoint != "" }

// NotifyExhausted implements cascade.Notifier. It returns immediately; the
// HTTP POST happens on a detached goroutine with its own deadline, so the
// request context (canceled once the webhook response is written) is not
// inherited.
func (d *Dispatcher) NotifyExhausted(ctx context.Context, ev cascade.ExhaustionEvent) {
	if !d.Enabled() {
		d.log.Debug("workflow notification skipped, endpoint not configured", "call_sid", ev.CallSID)
		return
	}

	if d.guard != nil {
		first, err := d.guard.FirstDispatch(ctx, ev.CallSID)
		if err != nil {
			d.log.Warn("notification guard unavailable, dispatching anyway", "call_sid", ev.CallSID, "err", err)
		} else if !first {
			d.log.Info("duplicate exhaustion event suppressed", "call_sid", ev.CallSID)
			return
		}
	}

	if !d.inflight.TryAcquire(1) {
		d.log.Warn("notification dropped, dispatch bound saturated", "call_sid", ev.CallSID)
		return
	}

	payload := NewPayload(ev)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.inflight.Release(1)
		if err := d.deliver(payload); err != nil {
			d.log.Warn("workflow notification failed", "call_sid", payload.CallSID, "err", err)
			return
		}
		d.log.Info("workflow notified", "call_sid", payload.CallSID, "attempts", payload.TotalAttempts)
	}()
}

func (d *Dispatcher) deliver(p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.secret != "" {
		req.Header.Set(headerWorkflowSecret, d.secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post workflow endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("workflow endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Drain waits for in-flight deliveries, bounded by ctx. Used at shutdown
// and in tests; new dispatches are not prevented.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
