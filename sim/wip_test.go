package sim

import "testing"

func TestWIPGate_AdmitUpToLimit(t *testing.T) {
	g := NewWIPGate(2)
	a := NewStory(1, 3, 0)
	b := NewStory(2, 3, 0)
	c := NewStory(3, 3, 0)

	if !g.Admit(a) || !g.Admit(b) {
		t.Fatal("gate refused admission below the limit")
	}
	if g.Admit(c) {
		t.Fatal("gate admitted past the limit")
	}
	if c.Wait != WaitWIP {
		t.Errorf("queued story wait = %q, want %q", c.Wait, WaitWIP)
	}
	if g.Active() != 2 || g.QueueLen() != 1 {
		t.Errorf("active/queue = %d/%d, want 2/1", g.Active(), g.QueueLen())
	}
}

func TestWIPGate_DepartAdmitsInArrivalOrder(t *testing.T) {
	g := NewWIPGate(1)
	a := NewStory(1, 3, 0)
	b := NewStory(2, 3, 0)
	c := NewStory(3, 3, 0)

	g.Admit(a)
	g.Admit(b)
	g.Admit(c)

	if next := g.NextAdmitted(); next != nil {
		t.Fatalf("admitted %d while the gate was full", next.ID)
	}

	g.Depart()
	if next := g.NextAdmitted(); next == nil || next.ID != 2 {
		t.Fatalf("expected story 2 first, got %v", next)
	}
	g.Depart()
	if next := g.NextAdmitted(); next == nil || next.ID != 3 {
		t.Fatalf("expected story 3 next, got %v", next)
	}
	if g.Active() != 1 || g.QueueLen() != 0 {
		t.Errorf("active/queue = %d/%d, want 1/0", g.Active(), g.QueueLen())
	}
}

func TestWIPGate_AdmitIsIdempotentForQueuedStory(t *testing.T) {
	g := NewWIPGate(1)
	g.Admit(NewStory(1, 3, 0))
	b := NewStory(2, 3, 0)
	g.Admit(b)
	g.Admit(b)
	if g.QueueLen() != 1 {
		t.Errorf("duplicate queue entries: %d", g.QueueLen())
	}
}

func TestWIPGate_DepartUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on depart with no active stories")
		}
	}()
	NewWIPGate(1).Depart()
}
