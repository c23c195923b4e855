package scene

import (
	"errors"
	"testing"

	"pluvia/gametime"
)

// recorder is a Scene that logs its lifecycle calls into a shared journal
type recorder struct {
	name     string
	journal  *[]string
	startErr error
	onUpdate func()
}

func (r *recorder) OnStart() error {
	*r.journal = append(*r.journal, r.name+".start")
	return r.startErr
}

func (r *recorder) OnUpdate(gametime.Time) error {
	*r.journal = append(*r.journal, r.name+".update")
	if r.onUpdate != nil {
		r.onUpdate()
	}
	return nil
}

func (r *recorder) OnStop() {
	*r.journal = append(*r.journal, r.name+".stop")
}

func (r *recorder) String() string { return r.name }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSwitchStopsOldBeforeStartingNew(t *testing.T) {
	var journal []string
	m := NewManager()
	title := &recorder{name: "title", journal: &journal}
	level := &recorder{name: "level", journal: &journal}

	if err := m.Switch(title); err != nil {
		t.Fatalf("Switch(title): %v", err)
	}
	if err := m.Switch(level); err != nil {
		t.Fatalf("Switch(level): %v", err)
	}

	want := []string{"title.start", "title.stop", "level.start"}
	if !equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
	if m.Active() != level {
		t.Errorf("Active() = %v, want level", m.Active())
	}
}

func TestFailedStartLeavesNoScene(t *testing.T) {
	var journal []string
	m := NewManager()
	bootErr := errors.New("map missing")

	title := &recorder{name: "title", journal: &journal}
	broken := &recorder{name: "broken", journal: &journal, startErr: bootErr}

	_ = m.Switch(title)
	err := m.Switch(broken)

	if !errors.Is(err, bootErr) {
		t.Fatalf("Switch error = %v, want %v", err, bootErr)
	}
	if m.Active() != nil {
		t.Errorf("Active() = %v after failed start, want nil", m.Active())
	}
	if err := m.Update(gametime.Time{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("Update error = %v, want ErrNoScene", err)
	}
}

func TestRequestIsAppliedAfterUpdate(t *testing.T) {
	var journal []string
	m := NewManager()
	level := &recorder{name: "level", journal: &journal}
	title := &recorder{name: "title", journal: &journal}
	title.onUpdate = func() { m.Request(level) }

	_ = m.Switch(title)
	if err := m.Update(gametime.Time{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := m.Update(gametime.Time{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []string{"title.start", "title.update", "title.stop", "level.start", "level.update"}
	if !equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestRequestNilExits(t *testing.T) {
	var journal []string
	m := NewManager()
	level := &recorder{name: "level", journal: &journal}
	level.onUpdate = func() { m.Request(nil) }

	_ = m.Switch(level)
	if err := m.Update(gametime.Time{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if m.Active() != nil {
		t.Fatalf("Active() = %v after exit request, want nil", m.Active())
	}
	if err := m.Update(gametime.Time{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("Update error = %v, want ErrNoScene", err)
	}
}

func TestStop(t *testing.T) {
	var journal []string
	m := NewManager()
	level := &recorder{name: "level", journal: &journal}

	_ = m.Switch(level)
	m.Request(&recorder{name: "other", journal: &journal})
	m.Stop()

	want := []string{"level.start", "level.stop"}
	if !equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
	if m.Active() != nil {
		t.Error("scene still active after Stop")
	}
}
