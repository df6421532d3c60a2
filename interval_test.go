package gtimer

import (
	"testing"
	"time"
)

func TestInterval(t *testing.T) {
	s := NewSystem()
	defer s.Stop()

	iv, err := NewInterval(s, 50*time.Millisecond)
	if err != nil {
		t.Fatal("new interval: ", err)
	}
	defer iv.Stop()

	start := time.Now()
	for i := 0; i < 3; i++ {
		select {
		case <-iv.C():
		case <-time.After(1 * time.Second):
			t.Fatalf("interval tick %d not fired", i)
		}
	}

	elapsed := time.Since(start)
	if elapsed < 150*time.Millisecond {
		t.Fatalf("3 ticks too fast: %s", elapsed)
	}
	if elapsed >= 600*time.Millisecond {
		t.Fatalf("3 ticks too slow: %s", elapsed)
	}
}

func TestIntervalStop(t *testing.T) {
	s := NewSystem()
	defer s.Stop()

	iv, err := NewInterval(s, 30*time.Millisecond)
	if err != nil {
		t.Fatal("new interval: ", err)
	}

	select {
	case <-iv.C():
	case <-time.After(1 * time.Second):
		t.Fatal("interval not fired")
	}

	iv.Stop()

	// 等待在途回调完成后清空残留信号.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-iv.C():
	default:
	}

	select {
	case <-iv.C():
		t.Fatal("stopped interval fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestIntervalRestart(t *testing.T) {
	s := NewSystem()
	defer s.Stop()

	iv, err := NewInterval(s, 1*time.Second)
	if err != nil {
		t.Fatal("new interval: ", err)
	}
	defer iv.Stop()

	start := time.Now()
	if err := iv.Restart(50 * time.Millisecond); err != nil {
		t.Fatal("restart interval: ", err)
	}

	select {
	case <-iv.C():
		if elapsed := time.Since(start); elapsed >= 300*time.Millisecond {
			t.Fatalf("restarted interval too slow: %s", elapsed)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("restarted interval not fired")
	}
}
