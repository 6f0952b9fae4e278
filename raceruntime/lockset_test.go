package raceruntime

import "testing"

func TestLockSetSelfProtectedAccessNeverRaces(t *testing.T) {
	e := newLockSetEngine()

	e.acquire(1, 0)
	if race, _ := e.access(1, 0, true); race {
		t.Fatalf("first access under own lock must not race")
	}
	if race, _ := e.access(1, 0, true); race {
		t.Fatalf("repeated self-protected access must not race")
	}
}

func TestLockSetDisjointLocksRaceOnWrite(t *testing.T) {
	e := newLockSetEngine()

	e.acquire(1, 100)
	e.access(1, 0, true)
	e.release(1, 100)

	e.acquire(2, 200) // a different lock entirely
	race, priorWasWrite := e.access(2, 0, true)
	if !race {
		t.Fatalf("disjoint lock-sets with a write must race")
	}
	if !priorWasWrite {
		t.Fatalf("prior access was a write")
	}
}

func TestLockSetSharedLockNeverRaces(t *testing.T) {
	e := newLockSetEngine()

	e.acquire(1, 100)
	e.access(1, 0, true)
	e.release(1, 100)

	e.acquire(2, 100) // same lock
	race, _ := e.access(2, 0, true)
	if race {
		t.Fatalf("shared lock-set must not race")
	}
}

func TestLockSetTwoReadsNeverRace(t *testing.T) {
	e := newLockSetEngine()

	e.access(1, 0, false)
	race, _ := e.access(2, 0, false)
	if race {
		t.Fatalf("two unsynchronized reads are not a race")
	}
}

func TestLockSetSameThreadSequentialAccessesNeverRace(t *testing.T) {
	e := newLockSetEngine()

	e.access(1, 0, true)
	race, _ := e.access(1, 0, true)
	if race {
		t.Fatalf("same-thread sequential accesses never race")
	}
}
