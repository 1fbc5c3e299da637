// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package augment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Outcome is the result of augmenting one link in a batch.
type Outcome struct {
	Link  string
	Value Value
	Err   error
}

// Batch augments links with at most concurrency calls in flight. Outcomes
// are returned in input order; one link's failure never affects another.
func Batch(ctx context.Context, svc Augmenter, links []string, concurrency int) []Outcome {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	out := make([]Outcome, len(links))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, link := range links {
		g.Go(func() error {
			v, err := svc.Augment(ctx, link)
			out[i] = Outcome{Link: link, Value: v, Err: err}
			return nil
		})
	}
	g.Wait()
	return out
}
