package services

import (
	"context"
	"sync"

	"budgetplanner/internal/core"
)

// Observer is told about every mutation after it has been applied.
type Observer interface {
	OnChange(ctx context.Context, ev core.ChangeEvent)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, ev core.ChangeEvent)

func (f ObserverFunc) OnChange(ctx context.Context, ev core.ChangeEvent) {
	f(ctx, ev)
}

type subscription struct {
	id  int
	obs Observer
}

// observers is a subscription list safe for concurrent use.
type observers struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

func (o *observers) subscribe(obs Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.next
	o.next++
	o.subs = append(o.subs, subscription{id: id, obs: obs})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// notify calls observers in subscription order, outside the list lock.
func (o *observers) notify(ctx context.Context, ev core.ChangeEvent) {
	o.mu.Lock()
	subs := append([]subscription(nil), o.subs...)
	o.mu.Unlock()

	for _, s := range subs {
		s.obs.OnChange(ctx, ev)
	}
}
