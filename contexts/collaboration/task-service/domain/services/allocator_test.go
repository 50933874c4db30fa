package services

import (
	"errors"
	"math"
	"testing"

	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contracts/faults"
)

func ptr(v float64) *float64 { return &v }

func TestPlaceNeighborRules(t *testing.T) {
	alloc := Allocator{Step: 10}
	cases := []struct {
		name      string
		preceding *float64
		following *float64
		want      float64
	}{
		{name: "first position", following: ptr(100), want: 90},
		{name: "last position", preceding: ptr(100), want: 110},
		{name: "between", preceding: ptr(100), following: ptr(200), want: 150},
	}
	for _, tc := range cases {
		got, err := alloc.Place(tc.preceding, tc.following)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestPlaceRejectsBadNeighbors(t *testing.T) {
	alloc := Allocator{Step: 10}
	if _, err := alloc.Place(nil, nil); !errors.Is(err, domainerrors.ErrEmptyScope) {
		t.Fatalf("expected empty scope, got %v", err)
	}
	_, err := alloc.Place(ptr(200), ptr(100))
	if !errors.Is(err, domainerrors.ErrInvalidNeighbors) {
		t.Fatalf("expected invalid neighbors, got %v", err)
	}
	if !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected conflict kind, got %v", faults.Kind(err))
	}
	if _, err := alloc.Place(ptr(100), ptr(100)); !errors.Is(err, domainerrors.ErrInvalidNeighbors) {
		t.Fatalf("expected equal neighbors to be rejected, got %v", err)
	}
}

func TestPlaceDetectsPrecisionExhaustion(t *testing.T) {
	alloc := Allocator{Step: 10}
	low := 1.0
	high := math.Nextafter(low, 2)
	if _, err := alloc.Place(&low, &high); !errors.Is(err, domainerrors.ErrPrecisionExhausted) {
		t.Fatalf("expected exhaustion between adjacent floats, got %v", err)
	}

	huge := 1e300
	if _, err := alloc.Place(nil, &huge); !errors.Is(err, domainerrors.ErrPrecisionExhausted) {
		t.Fatalf("expected exhaustion when step vanishes, got %v", err)
	}

	top := math.MaxFloat64
	if _, err := alloc.Place(ptr(top/2), &top); !errors.Is(err, domainerrors.ErrPrecisionExhausted) {
		t.Fatalf("expected overflowing midpoint to be rejected, got %v", err)
	}
	if _, err := alloc.Place(&top, nil); !errors.Is(err, domainerrors.ErrPrecisionExhausted) {
		t.Fatalf("expected exhaustion past max, got %v", err)
	}
}

func TestRepeatedHalvingEventuallyExhausts(t *testing.T) {
	alloc := Allocator{Step: 1024}
	low, high := 1024.0, 2048.0
	for i := 0; i < 200; i++ {
		mid, err := alloc.Place(&low, &high)
		if errors.Is(err, domainerrors.ErrPrecisionExhausted) {
			return
		}
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		high = mid
	}
	t.Fatalf("expected precision exhaustion within 200 halvings")
}

func TestAppendAndRebalance(t *testing.T) {
	alloc := Allocator{}
	if got := alloc.Append(nil); got != DefaultStep {
		t.Fatalf("expected %v for empty scope, got %v", DefaultStep, got)
	}
	if got := alloc.Append(ptr(4096)); got != 4096+DefaultStep {
		t.Fatalf("expected append after max, got %v", got)
	}

	got := Allocator{Step: 10}.Rebalance(3)
	want := []float64{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if (Allocator{Step: 10}).Rebalance(0) != nil {
		t.Fatalf("expected nil for empty scope")
	}
}
