package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestMemoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.Create(ctx, &User{Name: "Ada", Email: " ada@example.com ", Password: "hash"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := s.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Ada" || user.Password != "hash" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := s.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.Create(ctx, &User{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Create(ctx, &User{Name: "B", Email: "a@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	user, _ := s.FindByEmail(ctx, "a@example.com")
	if user.Name != "A" {
		t.Fatalf("expected first registration to win, got %q", user.Name)
	}
}

func TestMemoryConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Create(ctx, &User{Name: fmt.Sprintf("user-%d", i), Email: "race@example.com"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrDuplicateEmail) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", succeeded)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "memory", cfg: &Config{Driver: "Memory"}},
		{name: "unknown driver", cfg: &Config{Driver: "sqlite"}, wantErr: true},
		{name: "mongo without config", cfg: &Config{Driver: DriverMongo}, wantErr: true},
		{name: "default driver without config", cfg: &Config{}, wantErr: true},
		{name: "postgres without url", cfg: &Config{Driver: DriverPostgres, Postgres: &PostgresConfig{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Open(context.Background(), tt.cfg, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := s.(*Memory); !ok {
				t.Fatalf("expected memory store, got %T", s)
			}
		})
	}
}
