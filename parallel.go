package doclai

import (
	"context"
	"sync"
)

// progressTracker reports (current, total) pairs. Only the goroutine that
// collects outcomes advances it, so current never decreases.
type progressTracker struct {
	mu      sync.Mutex
	current int
	total   int
	fn      ProgressFunc
}

func newProgressTracker(total int, fn ProgressFunc) *progressTracker {
	return &progressTracker{total: total, fn: fn}
}

func (p *progressTracker) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fn != nil {
		p.fn(p.current, p.total)
	}
}

func (p *progressTracker) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
	if p.fn != nil {
		p.fn(p.current, p.total)
	}
}

// Snapshot returns the last reported progress.
func (p *progressTracker) Snapshot() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Progress{Current: p.current, Total: p.total}
}

// translateUnits sends every unit through client and hands each outcome to
// record. record and progress run on the calling goroutine only. With
// workers above one, up to that many units are in flight at once.
func translateUnits(
	ctx context.Context,
	client UnitTranslator,
	units []TextNode,
	request func(TextNode) TranslationRequest,
	workers int,
	tracker *progressTracker,
	record func(TextNode, Outcome),
) {
	if workers <= 1 || len(units) < 2 {
		for _, node := range units {
			record(node, client.Translate(ctx, request(node)))
			tracker.advance()
		}
		return
	}

	type unitResult struct {
		node    TextNode
		outcome Outcome
	}

	results := make(chan unitResult, len(units))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, node := range units {
		wg.Add(1)
		go func(n TextNode) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- unitResult{node: n, outcome: client.Translate(ctx, request(n))}
		}(node)
	}

	// Close results channel when all goroutines complete
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		record(r.node, r.outcome)
		tracker.advance()
	}
}
