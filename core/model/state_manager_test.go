package model

import (
	"sync"
	"testing"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager("MinMaxScaler")

	if s.IsFitted() {
		t.Fatal("new state manager should not be fitted")
	}
	err := s.RequireFitted("Transform")
	if !errors.Is(err, errors.ErrNotFitted) {
		t.Fatalf("RequireFitted() = %v, want ErrNotFitted", err)
	}

	s.SetFitted(6, 100)
	if err := s.RequireFitted("Transform"); err != nil {
		t.Fatalf("RequireFitted() after SetFitted = %v", err)
	}
	f, n := s.Dimensions()
	if f != 6 || n != 100 {
		t.Errorf("Dimensions() = (%d, %d), want (6, 100)", f, n)
	}

	want := State{Name: "MinMaxScaler", Fitted: true, NFeatures: 6, NSamples: 100}
	if got := s.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset() should clear fitted state")
	}
}

func TestStateManagerConcurrentAccess(t *testing.T) {
	s := NewStateManager("Sequential")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetFitted(4, i)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.IsFitted()
			_, _ = s.Dimensions()
		}()
	}
	wg.Wait()
	if !s.IsFitted() {
		t.Error("expected fitted after concurrent SetFitted calls")
	}
}
