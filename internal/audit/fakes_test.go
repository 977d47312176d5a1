package audit

import (
	"context"
	"errors"
	"sync"
)

type generateCall struct {
	System string
	User   string
}

// scriptedGenerator returns its replies in order and records every call.
// When failAt matches the call index (0-based) it returns err instead.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	failAt  int
	err     error
	calls   []generateCall
}

func newScriptedGenerator(replies ...string) *scriptedGenerator {
	return &scriptedGenerator{replies: replies, failAt: -1}
}

func (g *scriptedGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.calls)
	g.calls = append(g.calls, generateCall{System: system, User: user})
	if i == g.failAt {
		return "", g.err
	}
	if i >= len(g.replies) {
		return "", errors.New("scripted generator: no reply left")
	}
	return g.replies[i], nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// staticFetcher returns content (or err) and counts calls.
type staticFetcher struct {
	mu      sync.Mutex
	content string
	err     error
	urls    []string
}

func (f *staticFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *staticFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}
