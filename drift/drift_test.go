package drift

import (
	"math/rand"
	"testing"
	"time"
)

func TestCompensator_Tick(t *testing.T) {
	period := 40 * time.Millisecond

	tests := []struct {
		name        string
		elapsed     []time.Duration
		wantOwed    []int
		wantDeficit time.Duration
	}{
		{
			name:        "on time",
			elapsed:     []time.Duration{40 * time.Millisecond, 10 * time.Millisecond},
			wantOwed:    []int{0, 0},
			wantDeficit: 0,
		},
		{
			name:        "partial deficit accumulates",
			elapsed:     []time.Duration{60 * time.Millisecond, 60 * time.Millisecond},
			wantOwed:    []int{0, 1},
			wantDeficit: 0,
		},
		{
			name:        "slow tick owes several frames",
			elapsed:     []time.Duration{170 * time.Millisecond},
			wantOwed:    []int{3},
			wantDeficit: 10 * time.Millisecond,
		},
		{
			name:        "fast ticks do not pay back deficit",
			elapsed:     []time.Duration{70 * time.Millisecond, 1 * time.Millisecond},
			wantOwed:    []int{0, 0},
			wantDeficit: 30 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(period)
			for i, e := range tt.elapsed {
				if got := c.Tick(e); got != tt.wantOwed[i] {
					t.Errorf("tick %d owed = %d, want %d", i, got, tt.wantOwed[i])
				}
			}
			if c.Deficit() != tt.wantDeficit {
				t.Errorf("Deficit() = %v, want %v", c.Deficit(), tt.wantDeficit)
			}
		})
	}
}

func TestCompensator_RepeatsMatchFloorOfDeficit(t *testing.T) {
	period := PeriodForFPS(30)
	c := New(period)
	rng := rand.New(rand.NewSource(7))

	var excess time.Duration
	var repeats int64
	for i := 0; i < 5000; i++ {
		elapsed := time.Duration(rng.Int63n(int64(3 * period)))
		if over := elapsed - period; over > 0 {
			excess += over
		}
		repeats += int64(c.Tick(elapsed))

		if want := int64(excess / period); repeats != want {
			t.Fatalf("tick %d: repeats = %d, want floor(%v/%v) = %d", i, repeats, excess, period, want)
		}
		if c.Deficit() < 0 || c.Deficit() >= period {
			t.Fatalf("tick %d: deficit %v outside [0, %v)", i, c.Deficit(), period)
		}
	}
	if c.Repeated() != repeats {
		t.Errorf("Repeated() = %d, want %d", c.Repeated(), repeats)
	}
}

func TestCompensator_ThrottleFeedback(t *testing.T) {
	period := 10 * time.Millisecond
	c := New(period)

	if c.Throttle() != 1 {
		t.Fatalf("initial throttle = %d, want 1", c.Throttle())
	}

	// Ten repeats stay within the limit.
	c.Tick(period + 10*period)
	if c.Throttle() != 1 {
		t.Fatalf("throttle after 10 repeats = %d, want 1", c.Throttle())
	}

	// The eleventh raises the throttle and resets the repeat counter.
	c.Tick(period + period)
	if c.Throttle() != 2 {
		t.Fatalf("throttle after 11 repeats = %d, want 2", c.Throttle())
	}

	// Drive far past the cap.
	for i := 0; i < 20; i++ {
		c.Tick(period + 20*period)
	}
	if c.Throttle() != DefaultMaxThrottle {
		t.Errorf("throttle = %d, want cap %d", c.Throttle(), DefaultMaxThrottle)
	}
}

func TestCompensator_Reset(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Tick(500 * time.Millisecond)
	c.Tick(15 * time.Millisecond)
	c.Reset()

	if c.Deficit() != 0 || c.Repeated() != 0 || c.Throttle() != 1 {
		t.Errorf("after Reset: deficit=%v repeated=%d throttle=%d", c.Deficit(), c.Repeated(), c.Throttle())
	}
}

func TestPeriodForFPS(t *testing.T) {
	if got := PeriodForFPS(25); got != 40*time.Millisecond {
		t.Errorf("PeriodForFPS(25) = %v, want 40ms", got)
	}
}

func TestNew_PanicsOnZeroPeriod(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New(0)
}
