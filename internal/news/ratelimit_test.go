package news

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

func TestRateLimitedSpacesCalls(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	upstream := ProviderFunc(func(ctx context.Context, opts Options) ([]models.NewsItem, error) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		return nil, nil
	})

	const interval = 40 * time.Millisecond
	rl := NewRateLimited(upstream, interval)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := rl.FetchNews(context.Background(), Options{Language: "en"}); err != nil {
				t.Errorf("FetchNews: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(stamps) != 3 {
		t.Fatalf("calls = %d", len(stamps))
	}
	if span := stamps[2].Sub(stamps[0]); span < 2*interval-5*time.Millisecond {
		t.Fatalf("three calls spanned %v, want at least %v", span, 2*interval)
	}
}

func TestRateLimitedHonorsContext(t *testing.T) {
	upstream := ProviderFunc(func(ctx context.Context, opts Options) ([]models.NewsItem, error) {
		return nil, nil
	})
	rl := NewRateLimited(upstream, time.Hour)

	if _, err := rl.FetchNews(context.Background(), Options{}); err != nil {
		t.Fatalf("first call should not wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := rl.FetchNews(ctx, Options{}); err == nil {
		t.Fatal("expected context error while waiting for a slot")
	}
}
