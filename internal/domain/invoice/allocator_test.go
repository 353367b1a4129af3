package invoice

import (
	"context"
	"testing"
)

type fakeProber struct {
	taken map[int64]bool
}

func (f *fakeProber) ExistsByNumber(_ context.Context, number int64) (bool, error) {
	return f.taken[number], nil
}

func TestAllocate_SmallestAbsentNumber(t *testing.T) {
	tests := []struct {
		name  string
		taken []int64
		want  int64
	}{
		{"empty set", nil, 1},
		{"dense from one", []int64{1, 2, 3}, 4},
		{"gap in the middle", []int64{1, 2, 4, 5}, 3},
		{"one is free", []int64{2, 3, 99}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &fakeProber{taken: make(map[int64]bool)}
			for _, n := range tt.taken {
				prober.taken[n] = true
			}

			got, err := NewNumberAllocator(prober).Allocate(context.Background())
			if err != nil {
				t.Fatalf("allocate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAllocateFrom(t *testing.T) {
	prober := &fakeProber{taken: map[int64]bool{1: true, 2: true, 3: true}}
	alloc := NewNumberAllocator(prober)

	got, err := alloc.AllocateFrom(context.Background(), 2)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if got != 4 {
		t.Errorf("want 4, got %d", got)
	}

	// start below one is clamped
	got, err = alloc.AllocateFrom(context.Background(), -5)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if got != 4 {
		t.Errorf("want 4, got %d", got)
	}
}

func TestAllocate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNumberAllocator(&fakeProber{taken: map[int64]bool{}}).Allocate(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
}
