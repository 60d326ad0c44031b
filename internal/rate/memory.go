package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter replica el algoritmo fixed-window en memoria local.
// Sirve para despliegues de una sola instancia o sin Redis.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	hits  int64
}

// NewMemoryLimiter crea un limiter en memoria.
func NewMemoryLimiter(max int, windowDur time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:     int64(max),
		Window:  windowDur,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || w.start.Before(winStart) {
		w = &window{start: winStart}
		l.windows[key] = w
	}
	w.hits++

	// poda oportunista de ventanas vencidas
	if len(l.windows) > 1024 {
		for k, old := range l.windows {
			if old.start.Before(winStart) {
				delete(l.windows, k)
			}
		}
	}

	remaining := l.Max - w.hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{Allowed: w.hits <= l.Max, Remaining: remaining}
	if !res.Allowed {
		res.RetryAfter = w.start.Add(l.Window).Sub(now)
		if res.RetryAfter <= 0 {
			res.RetryAfter = l.Window
		}
	}
	return res, nil
}
