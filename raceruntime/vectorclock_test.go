package raceruntime

import "testing"

func TestVectorClockJoinAndForkMonotonicallyIncrease(t *testing.T) {
	e := newVCEngine()

	before := e.clockOf(1).clone()
	e.fork(1, 2)
	after := e.clockOf(1)

	if !lessOrEqual(before, after) || lessOrEqual(after, before) {
		t.Fatalf("forking thread's clock must strictly advance: before=%v after=%v", before, after)
	}

	childBefore := e.clockOf(2).clone()
	e.fork(1, 3)
	e.join(1, 2)
	childAfter := e.clockOf(2)
	if !lessOrEqual(childBefore, childAfter) {
		t.Fatalf("join must not roll back the child's own clock")
	}
}

func TestVectorClockUnsynchronizedWritesRace(t *testing.T) {
	e := newVCEngine()

	e.clockOf(1)
	e.clockOf(2)

	if race := e.write(1, 0); race {
		t.Fatalf("first write is never a race")
	}
	if race := e.write(2, 0); !race {
		t.Fatalf("concurrent write from an unrelated thread must race")
	}
}

func TestVectorClockReleaseThenAcquireEstablishesHappensBefore(t *testing.T) {
	e := newVCEngine()

	e.write(1, 0)
	e.release(1, 100)
	e.acquire(2, 100)

	if race := e.write(2, 0); race {
		t.Fatalf("release/acquire on a shared lock must order the writes")
	}
}

func TestVectorClockReadAfterWriteBySameThreadNeverRaces(t *testing.T) {
	e := newVCEngine()

	e.write(1, 0)
	if race := e.read(1, 0); race {
		t.Fatalf("same-thread read-after-write never races")
	}
}

func TestVectorClockConcurrentReadWriteRaces(t *testing.T) {
	e := newVCEngine()

	e.read(1, 0)
	if race := e.write(2, 0); !race {
		t.Fatalf("concurrent read then write from an unrelated thread must race")
	}
}
