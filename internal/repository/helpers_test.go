package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

type fakeViewCounter struct {
	views   map[string]int
	rpcErr  error
	readErr error
	rpcHits int
	rmwHits int
}

func (f *fakeViewCounter) callIncrement(_ context.Context, id string) error {
	if f.rpcErr != nil {
		return f.rpcErr
	}
	f.rpcHits++
	if _, ok := f.views[id]; ok {
		f.views[id]++
	}
	return nil
}

func (f *fakeViewCounter) readViewCount(_ context.Context, id string) (int, bool, error) {
	if f.readErr != nil {
		return 0, false, f.readErr
	}
	n, ok := f.views[id]
	return n, ok, nil
}

func (f *fakeViewCounter) writeViewCount(_ context.Context, id string, n int) error {
	f.rmwHits++
	f.views[id] = n
	return nil
}

func TestIncrementViewCount(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		rpcErr  error
		wantRPC int
		wantRMW int
	}{
		{name: "function call", wantRPC: 1},
		{name: "fallback when function missing", rpcErr: errors.New(`function increment_view_count(unknown) does not exist`), wantRMW: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := &fakeViewCounter{views: map[string]int{"p1": 41}, rpcErr: tt.rpcErr}

			if err := incrementViewCount(ctx, vc, "p1"); err != nil {
				t.Fatalf("incrementViewCount() error: %v", err)
			}
			if vc.views["p1"] != 42 {
				t.Errorf("view_count = %d, want 42", vc.views["p1"])
			}
			if vc.rpcHits != tt.wantRPC || vc.rmwHits != tt.wantRMW {
				t.Errorf("paths rpc=%d rmw=%d, want rpc=%d rmw=%d", vc.rpcHits, vc.rmwHits, tt.wantRPC, tt.wantRMW)
			}
		})
	}
}

func TestIncrementViewCount_MissingPost(t *testing.T) {
	vc := &fakeViewCounter{views: map[string]int{}, rpcErr: errors.New("rpc failed")}
	if err := incrementViewCount(context.Background(), vc, "missing"); err != nil {
		t.Fatalf("expected no error for missing post, got %v", err)
	}
	if len(vc.views) != 0 {
		t.Error("fallback must not create rows")
	}
}

func TestIncrementViewCount_FallbackReadFails(t *testing.T) {
	vc := &fakeViewCounter{views: map[string]int{"p1": 1}, rpcErr: errors.New("rpc failed"), readErr: errors.New("conn reset")}
	err := incrementViewCount(context.Background(), vc, "p1")
	if err == nil {
		t.Fatal("expected error when both paths fail")
	}
}

func TestTranslateError(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "posts_slug_key"}
	if err := translateError(fmt.Errorf("insert: %w", dup)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	other := &pq.Error{Code: "23503"}
	if err := translateError(other); errors.Is(err, ErrDuplicate) {
		t.Error("foreign key violation should not map to ErrDuplicate")
	}

	if translateError(nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"ditto":   "%ditto%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
		"뉴진스":     "%뉴진스%",
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
