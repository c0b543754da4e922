package observability

import (
	"context"

	"github.com/aretw0/rootseek/pkg/domain"
)

// MergeHooks fans every event out to each set of hooks, in order.
func MergeHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			for _, h := range all {
				if h.OnPhaseEnter != nil {
					h.OnPhaseEnter(ctx, e)
				}
			}
		},
		OnRootSearch: func(ctx context.Context, e *domain.SearchEvent) {
			for _, h := range all {
				if h.OnRootSearch != nil {
					h.OnRootSearch(ctx, e)
				}
			}
		},
		OnRetry: func(ctx context.Context, e *domain.RetryEvent) {
			for _, h := range all {
				if h.OnRetry != nil {
					h.OnRetry(ctx, e)
				}
			}
		},
		OnIntersection: func(ctx context.Context, e *domain.IntersectionEvent) {
			for _, h := range all {
				if h.OnIntersection != nil {
					h.OnIntersection(ctx, e)
				}
			}
		},
	}
}
