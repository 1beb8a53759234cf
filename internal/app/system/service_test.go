package system

import (
	"context"
	"errors"
	"testing"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return f.stopErr
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&fakeService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("unexpected events: %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: want %s got %s", i, want[i], events[i])
		}
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager()
	_ = m.Register(&fakeService{name: "a", events: &events})
	_ = m.Register(&fakeService{name: "b", startErr: errors.New("boom"), events: &events})
	_ = m.Register(&fakeService{name: "c", events: &events})

	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected start failure")
	}

	want := []string{"start:a", "start:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("unexpected events: %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: want %s got %s", i, want[i], events[i])
		}
	}
}

func TestRegisterRejectsDuplicatesAndLateAdds(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.Register(&fakeService{name: "a", events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&fakeService{name: "a", events: &events}); err == nil {
		t.Fatalf("duplicate name should be rejected")
	}
	if err := m.Register(NoopService{}); err == nil {
		t.Fatalf("empty name should be rejected")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(&fakeService{name: "b", events: &events}); err == nil {
		t.Fatalf("registration after start should be rejected")
	}
}
