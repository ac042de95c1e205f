package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errBoom = errors.New("boom")

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New(2, 1, 10*time.Second, WithClock(clock.now))

	for i := 0; i < 2; i++ {
		if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("state = %s, want Open", b.State())
	}

	called := false
	if err := b.Do(func() error { called = true; return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn must not run while open")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New(1, 2, 5*time.Second, WithClock(clock.now))

	_ = b.Do(func() error { return errBoom })
	clock.advance(5 * time.Second)
	if b.State() != HalfOpen {
		t.Fatalf("state = %s, want Half-Open", b.State())
	}

	_ = b.Do(func() error { return nil })
	if b.State() != HalfOpen {
		t.Fatalf("state = %s after one success, want Half-Open", b.State())
	}
	_ = b.Do(func() error { return nil })
	if b.State() != Closed {
		t.Fatalf("state = %s, want Closed", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New(1, 1, time.Second, WithClock(clock.now))

	_ = b.Do(func() error { return errBoom })
	clock.advance(time.Second)
	_ = b.Do(func() error { return errBoom })
	if b.State() != Open {
		t.Fatalf("state = %s, want Open", b.State())
	}
}

func TestBreakerFailurePredicate(t *testing.T) {
	errIgnored := errors.New("caller error")
	b := New(1, 1, time.Minute, WithFailurePredicate(func(err error) bool {
		return !errors.Is(err, errIgnored)
	}))

	for i := 0; i < 3; i++ {
		if err := b.Do(func() error { return errIgnored }); !errors.Is(err, errIgnored) {
			t.Fatalf("err = %v, want errIgnored", err)
		}
	}
	if b.State() != Closed {
		t.Errorf("state = %s, want Closed", b.State())
	}
}
