package events

import (
	"testing"
)

type recordingObserver struct {
	name    string
	filter  string
	events  []Event
	failing bool
}

func (o *recordingObserver) OnEvent(event Event) error {
	o.events = append(o.events, event)
	if o.failing {
		return errFailed
	}
	return nil
}

func (o *recordingObserver) GetName() string { return o.name }

func (o *recordingObserver) ShouldHandle(eventType string) bool {
	return o.filter == "" || o.filter == eventType
}

var errFailed = &observerError{}

type observerError struct{}

func (e *observerError) Error() string { return "observer failed" }

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()

	obs := &recordingObserver{name: "recorder"}
	d.Register(obs)

	d.Dispatch(Event{Type: TypeAuthState, Data: AuthStateEvent{State: "authenticated", Username: "bob"}})

	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != TypeAuthState {
		t.Errorf("Expected event type %q, got %q", TypeAuthState, obs.events[0].Type)
	}
}

func TestDispatcher_Filtering(t *testing.T) {
	d := NewDispatcher()

	authOnly := &recordingObserver{name: "auth-only", filter: TypeAuthState}
	d.Register(authOnly)

	d.Dispatch(Event{Type: TypeDeckCacheClear})
	d.Dispatch(Event{Type: TypeAuthState})

	if len(authOnly.events) != 1 {
		t.Fatalf("Expected 1 filtered event, got %d", len(authOnly.events))
	}
}

func TestDispatcher_FailingObserverDoesNotBlockOthers(t *testing.T) {
	d := NewDispatcher()

	failing := &recordingObserver{name: "failing", failing: true}
	healthy := &recordingObserver{name: "healthy"}
	d.Register(failing)
	d.Register(healthy)

	d.Dispatch(Event{Type: TypeCardsModified, Data: CardsModifiedEvent{DeckID: 1, Operations: 2}})

	if len(healthy.events) != 1 {
		t.Errorf("Healthy observer should still receive event, got %d", len(healthy.events))
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	d := NewDispatcher()

	obs := &recordingObserver{name: "recorder"}
	d.Register(obs)

	if d.ObserverCount() != 1 {
		t.Fatalf("Expected 1 observer, got %d", d.ObserverCount())
	}

	d.Unregister(obs)
	d.Dispatch(Event{Type: TypeAuthState})

	if len(obs.events) != 0 {
		t.Errorf("Unregistered observer received %d events", len(obs.events))
	}
}
