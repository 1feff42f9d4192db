package event

import (
	"testing"
	"time"
)

// sortedInvariant fails the test if traversal order is ever decreasing in
// (Day, Message).
func sortedInvariant(t *testing.T, st *Store) {
	t.Helper()
	all := st.All()
	for i := 1; i < len(all); i++ {
		if compare(all[i-1], all[i]) > 0 {
			t.Fatalf("order violated at %d: %q before %q", i, all[i-1], all[i])
		}
	}
}

func TestInsertKeepsOrder(t *testing.T) {
	st := NewStore()
	st.NewEvent("Lunch", "", day(2024, time.March, 5), 1)
	st.NewEvent("Dentist", "", day(2024, time.March, 1), 2)
	st.NewEvent("Standup", "", day(2024, time.March, 1), 3)
	st.NewEvent("Anniversary", "", day(2024, time.February, 14), 4)
	st.NewEvent("Call mom", "", day(2024, time.March, 5), 5)

	sortedInvariant(t, st)

	all := st.All()
	if all[0].Message != "Anniversary" {
		t.Errorf("first = %q, want Anniversary", all[0].Message)
	}
	if all[len(all)-1].Message != "Lunch" {
		t.Errorf("last = %q, want Lunch", all[len(all)-1].Message)
	}
}

func TestInsertTieBreakIsInsertionOrder(t *testing.T) {
	st := NewStore()
	a := st.NewEvent("Same", "", day(2024, time.March, 1), 1)
	b := st.NewEvent("Same", "", day(2024, time.March, 1), 2)
	c := st.NewEvent("Same", "", day(2024, time.March, 1), 3)

	all := st.All()
	if all[0] != a || all[1] != b || all[2] != c {
		t.Errorf("equal keys not in insertion order: %d %d %d", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestRemove(t *testing.T) {
	st := NewStore()
	a := st.NewEvent("A", "", day(2024, time.March, 1), 1)
	b := st.NewEvent("B", "", day(2024, time.March, 2), 2)

	st.Remove(a)
	if st.Len() != 1 {
		t.Fatalf("len = %d, want 1", st.Len())
	}
	if st.All()[0] != b {
		t.Error("wrong event removed")
	}
}

func TestRemove_MatchesByIdentityNotValue(t *testing.T) {
	st := NewStore()
	st.NewEvent("Twin", "", day(2024, time.March, 1), 1)
	twin := st.NewEvent("Twin", "", day(2024, time.March, 1), 1)

	st.Remove(twin)
	if st.Len() != 1 {
		t.Fatalf("len = %d, want 1", st.Len())
	}
	if st.All()[0] == twin {
		t.Error("removed the wrong twin")
	}
}

func TestRemove_NonMemberPanics(t *testing.T) {
	st := NewStore()
	st.NewEvent("A", "", day(2024, time.March, 1), 1)
	stray := &Event{ID: 9, Day: day(2024, time.March, 1), Message: "A"}

	defer func() {
		if recover() == nil {
			t.Fatal("Remove of non-member did not panic")
		}
	}()
	st.Remove(stray)
}

func TestPaste(t *testing.T) {
	st := NewStore()
	st.NewEvent("Early", "", day(2024, time.March, 1), 1)
	ev := st.NewEvent("Moved", "", day(2024, time.March, 2), 2)
	st.NewEvent("Late", "", day(2024, time.March, 9), 3)

	st.Remove(ev)
	st.Paste(ev, day(2024, time.March, 10))

	sortedInvariant(t, st)
	all := st.All()
	if all[len(all)-1] != ev {
		t.Error("pasted event not at position of its new day")
	}
	for _, e := range st.On(day(2024, time.March, 2)) {
		if e == ev {
			t.Error("pasted event still visible on old day")
		}
	}
	if !ev.Day.Equal(day(2024, time.March, 10)) {
		t.Errorf("day = %v, want 2024-03-10", ev.Day)
	}
}

func TestOn(t *testing.T) {
	st := NewStore()
	st.NewEvent("A", "", day(2024, time.March, 1), 1)
	st.NewEvent("B", "", day(2024, time.March, 2), 2)
	st.NewEvent("C", "", day(2024, time.March, 1), 3)

	got := st.On(day(2024, time.March, 1))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got := st.On(day(2024, time.April, 1)); len(got) != 0 {
		t.Errorf("empty day returned %d events", len(got))
	}
}

func TestClear(t *testing.T) {
	st := NewStore()
	st.NewEvent("A", "", day(2024, time.March, 1), 1)
	st.Clear()
	if st.Len() != 0 {
		t.Errorf("len = %d after Clear", st.Len())
	}
}
