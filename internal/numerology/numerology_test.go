package numerology

import (
	"errors"
	"testing"
	"time"
)

func TestLookupAllIDs(t *testing.T) {
	for _, id := range IDs() {
		p, err := Lookup(id)
		if err != nil {
			t.Fatalf("lookup %d: %v", id, err)
		}
		if p.ID != id {
			t.Fatalf("profile id mismatch: got=%d want=%d", p.ID, id)
		}
		if p.PilotDF == 0 || p.PilotDT == 0 {
			t.Fatalf("profile %d has zero pilot spacing", id)
		}
	}
	if len(IDs()) != 6 {
		t.Fatalf("expected 6 numerologies, got %d", len(IDs()))
	}
}

func TestLookupRejectsOutOfRange(t *testing.T) {
	for _, id := range []uint32{6, 7, 255, ^uint32(0)} {
		_, err := Lookup(id)
		if !errors.Is(err, ErrInvalidNumerologyID) {
			t.Fatalf("id %d: expected ErrInvalidNumerologyID, got %v", id, err)
		}
	}
}

func TestMustLookupPanicsOnInvalidID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLookup(9)
}

func TestCatalogCopiesAreIsolated(t *testing.T) {
	all := All()
	all[0].NumDCIQAM = 1
	p := MustLookup(0)
	if p.NumDCIQAM != 224 {
		t.Fatalf("catalog mutated through All(): %d", p.NumDCIQAM)
	}
}

func TestDataREsPerRB(t *testing.T) {
	want := map[uint32]uint64{0: 672, 1: 720, 2: 720, 3: 720, 4: 704, 5: 736}
	for id, w := range want {
		p := MustLookup(id)
		if p.REsPerRB() != 768 {
			t.Fatalf("numerology %d gross REs: got=%d want=768", id, p.REsPerRB())
		}
		if got := p.DataREsPerRB(); got != w {
			t.Fatalf("numerology %d data REs: got=%d want=%d", id, got, w)
		}
	}
}

func TestSubframeDuration(t *testing.T) {
	p := MustLookup(0)
	if p.SubframeSamples() != 141312 {
		t.Fatalf("unexpected subframe samples: %d", p.SubframeSamples())
	}
	d := p.SubframeDuration()
	want := 4600 * time.Microsecond
	if d < want-time.Microsecond || d > want+time.Microsecond {
		t.Fatalf("unexpected subframe duration: %v", d)
	}
}
