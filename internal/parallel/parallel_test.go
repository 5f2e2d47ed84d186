package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForMembers(t *testing.T) {
	const members = 100

	var counter int64
	ForMembers(members, 8, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	if counter != members {
		t.Errorf("Expected %d calls, got %d", members, counter)
	}
}

func TestForMembers_EachMemberOnce(t *testing.T) {
	const members = 64

	seen := make([]int64, members)
	ForMembers(members, 0, func(m int) {
		atomic.AddInt64(&seen[m], 1)
	})

	for m, count := range seen {
		if count != 1 {
			t.Errorf("Member %d processed %d times, want 1", m, count)
		}
	}
}

func TestForMembers_SingleWorker(t *testing.T) {
	// One worker degenerates to a sequential, in-order loop.
	var order []int
	ForMembers(5, 1, func(m int) {
		order = append(order, m)
	})

	for i, m := range order {
		if m != i {
			t.Errorf("Call %d was member %d, want %d", i, m, i)
		}
	}
}

func TestForMembers_NoMembers(t *testing.T) {
	called := false
	ForMembers(0, 4, func(_ int) {
		called = true
	})
	if called {
		t.Error("fn should not be called for zero members")
	}
}
