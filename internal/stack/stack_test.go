package stack

import "testing"

func TestStack_New(t *testing.T) {
	s := New[int]()
	if !s.IsEmpty() {
		t.Fatal("new stack should be empty")
	}
	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", s.Size())
	}
}

func TestStack_NewWithCapacity(t *testing.T) {
	s := NewWithCapacity[string](8)
	if !s.IsEmpty() {
		t.Fatal("stack with capacity should start empty")
	}
	if cap(s.items) != 8 {
		t.Fatalf("cap = %d, want 8", cap(s.items))
	}
}

func TestStack_PushAndPop(t *testing.T) {
	s := New[any]()
	s.Push(1, "two", 3.0)

	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}

	want := []any{3.0, "two", 1}
	for _, expected := range want {
		got, ok := s.Pop()
		if !ok {
			t.Fatal("Pop() returned false on non-empty stack")
		}
		if got != expected {
			t.Fatalf("Pop() = %v, want %v", got, expected)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Fatal("Pop() on empty stack should return false")
	}
}

func TestStack_PopClearsSlot(t *testing.T) {
	s := New[*int]()
	value := 7
	s.Push(&value)
	s.Pop()

	if got := s.items[:1][0]; got != nil {
		t.Fatalf("popped slot still references %v", got)
	}
}
