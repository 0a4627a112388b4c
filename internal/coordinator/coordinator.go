// Package coordinator is the single active consumer of the outbox: it turns
// coordination events into planned work. Events are marked processed only
// after their side effects are durable, so a crash mid-handling causes a
// redelivery; every handler is idempotent because content, binding and work
// ids are deterministic.
package coordinator

import (
	"context"
	"time"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/logger"
	"github.com/akira/indexify/internal/store"
)

type Coordinator struct {
	store    *store.Store
	log      *logger.Logger
	interval time.Duration
	workers  []string
	nextIdx  int
}

type Option func(*Coordinator)

func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithWorkers registers the worker ids AssignPending distributes work over.
func WithWorkers(ids []string) Option {
	return func(c *Coordinator) { c.workers = ids }
}

func New(s *store.Store, baseLog *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    s,
		log:      baseLog.With("service", "Coordinator"),
		interval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until the context is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.log.Info("coordinator started", "interval", c.interval, "workers", len(c.workers))
	for {
		select {
		case <-ctx.Done():
			c.log.Info("coordinator stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := c.ProcessEvents(ctx); err != nil {
				c.log.Error("event processing failed", "error", err)
			}
			if len(c.workers) > 0 {
				if err := c.AssignPending(ctx); err != nil {
					c.log.Error("work assignment failed", "error", err)
				}
			}
		}
	}
}

// ProcessEvents drains the unprocessed outbox once. Each event is marked
// processed only after its work items are enqueued.
func (c *Coordinator) ProcessEvents(ctx context.Context) error {
	events, err := c.store.UnprocessedEvents(ctx)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := c.handleEvent(ctx, ev); err != nil {
			c.log.Error("event handling failed", "event_id", ev.ID, "error", err)
			continue
		}
		if err := c.store.MarkEventProcessed(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) handleEvent(ctx context.Context, ev *domain.ExtractionEvent) error {
	switch payload := ev.Payload.(type) {
	case domain.ContentCreated:
		return c.planForContent(ctx, ev.CorpusName, payload.ContentID)
	case domain.BindingAdded:
		return c.planForBinding(ctx, payload.Corpus, payload.BindingID)
	}
	c.log.Warn("ignoring event with unhandled payload", "event_id", ev.ID)
	return nil
}

// planForContent checks every binding of the content's corpus against the
// single new item and enqueues matching work.
func (c *Coordinator) planForContent(ctx context.Context, corpus, contentID string) error {
	cp, err := c.store.GetCorpus(ctx, corpus)
	if err != nil {
		return err
	}
	for _, binding := range cp.ExtractorBindings {
		matches, err := c.store.UnappliedContent(ctx, corpus, binding, contentID)
		if err != nil {
			return err
		}
		for _, content := range matches {
			work, err := c.store.PlanWork(ctx, content.ID, corpus, binding)
			if err != nil {
				return err
			}
			c.log.Debug("work planned", "work_id", work.ID, "content_id", content.ID, "binding_id", binding.ID)
		}
	}
	return nil
}

// planForBinding sweeps the whole corpus for content the new binding has
// not been applied to.
func (c *Coordinator) planForBinding(ctx context.Context, corpus, bindingID string) error {
	binding, err := c.store.BindingByID(ctx, corpus, bindingID)
	if err != nil {
		return err
	}
	matches, err := c.store.UnappliedContent(ctx, corpus, *binding, "")
	if err != nil {
		return err
	}
	for _, content := range matches {
		work, err := c.store.PlanWork(ctx, content.ID, corpus, *binding)
		if err != nil {
			return err
		}
		c.log.Debug("work planned", "work_id", work.ID, "content_id", content.ID, "binding_id", binding.ID)
	}
	return nil
}

// AssignPending distributes unassigned pending work round-robin over the
// registered workers. Re-assignment overwrites: last writer wins.
func (c *Coordinator) AssignPending(ctx context.Context) error {
	if len(c.workers) == 0 {
		return nil
	}
	pending, err := c.store.UnassignedWork(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	assignments := make(map[string]string, len(pending))
	for _, work := range pending {
		assignments[work.ID] = c.workers[c.nextIdx%len(c.workers)]
		c.nextIdx++
	}
	if err := c.store.AssignWork(ctx, assignments); err != nil {
		return err
	}
	c.log.Info("work assigned", "count", len(assignments))
	return nil
}
