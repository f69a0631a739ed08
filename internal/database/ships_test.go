package database

import (
	"testing"
	"time"

	"github.com/lawnchairsociety/shipyard/internal/ship"
)

func TestSaveAndGetShip(t *testing.T) {
	db := openTestDB(t)

	s := ship.Generate("catalog-1")
	at := time.Unix(1700000000, 123456789)
	rec, err := NewShipRecord(s.Snapshot(), at)
	if err != nil {
		t.Fatalf("NewShipRecord() failed: %v", err)
	}
	if err := db.SaveShip(rec); err != nil {
		t.Fatalf("SaveShip() failed: %v", err)
	}

	got, err := db.GetShip("catalog-1")
	if err != nil {
		t.Fatalf("GetShip() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetShip() returned nil for a saved ship")
	}
	if got.Fingerprint != s.Fingerprint() {
		t.Errorf("Fingerprint = %q, want %q", got.Fingerprint, s.Fingerprint())
	}
	if got.TotalMass != s.Budget.Total {
		t.Errorf("TotalMass = %v, want %v", got.TotalMass, s.Budget.Total)
	}
	if got.ThrusterCount != s.Thrusters.Count {
		t.Errorf("ThrusterCount = %d, want %d", got.ThrusterCount, s.Thrusters.Count)
	}
	if !got.GeneratedAt.Equal(at) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, at)
	}

	snap, err := got.DecodeSnapshot()
	if err != nil {
		t.Fatalf("DecodeSnapshot() failed: %v", err)
	}
	if snap.TotalLength != s.TotalLength {
		t.Errorf("decoded TotalLength = %v, want %v", snap.TotalLength, s.TotalLength)
	}
}

func TestGetShipMissing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetShip("never-generated")
	if err != nil {
		t.Fatalf("GetShip() failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetShip() = %+v, want nil", got)
	}
}

func TestSaveShipUpserts(t *testing.T) {
	db := openTestDB(t)

	rec, _ := NewShipRecord(ship.Generate("upsert").Snapshot(), time.Unix(100, 0))
	if err := db.SaveShip(rec); err != nil {
		t.Fatalf("first SaveShip() failed: %v", err)
	}
	rec.GeneratedAt = time.Unix(200, 0)
	if err := db.SaveShip(rec); err != nil {
		t.Fatalf("second SaveShip() failed: %v", err)
	}

	n, err := db.CountShips()
	if err != nil {
		t.Fatalf("CountShips() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountShips() = %d, want 1", n)
	}

	got, _ := db.GetShip("upsert")
	if got.GeneratedAt.Unix() != 200 {
		t.Errorf("GeneratedAt = %v, want the second save", got.GeneratedAt)
	}
}

func TestListShips(t *testing.T) {
	db := openTestDB(t)

	for i, seed := range []string{"old", "middle", "new"} {
		rec, _ := NewShipRecord(ship.Generate(seed).Snapshot(), time.Unix(int64(i*10), 0))
		if err := db.SaveShip(rec); err != nil {
			t.Fatalf("SaveShip(%s) failed: %v", seed, err)
		}
	}

	all, err := db.ListShips(0)
	if err != nil {
		t.Fatalf("ListShips(0) failed: %v", err)
	}
	if len(all) != 3 || all[0].Seed != "new" || all[2].Seed != "old" {
		t.Errorf("ListShips(0) = %v, want newest first", seeds(all))
	}

	two, _ := db.ListShips(2)
	if len(two) != 2 {
		t.Errorf("ListShips(2) returned %d ships", len(two))
	}
}

func seeds(recs []ShipRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Seed
	}
	return out
}

func TestHistoryNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Unix(1000, 0)
	for i, seed := range []string{"a", "b", "c", "b"} {
		id, err := db.RecordVisit(seed, base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("RecordVisit(%s) failed: %v", seed, err)
		}
		if id != int64(i+1) {
			t.Errorf("RecordVisit(%s) id = %d, want %d", seed, id, i+1)
		}
	}

	visits, err := db.RecentVisits(3)
	if err != nil {
		t.Fatalf("RecentVisits() failed: %v", err)
	}
	want := []string{"b", "c", "b"}
	if len(visits) != len(want) {
		t.Fatalf("RecentVisits(3) returned %d visits", len(visits))
	}
	for i, v := range visits {
		if v.Seed != want[i] {
			t.Errorf("visit %d = %q, want %q", i, v.Seed, want[i])
		}
	}
	if !visits[0].VisitedAt.Equal(base.Add(3 * time.Second)) {
		t.Errorf("VisitedAt = %v", visits[0].VisitedAt)
	}

	if got, _ := db.RecentVisits(0); got != nil {
		t.Errorf("RecentVisits(0) = %v, want nil", got)
	}
}

func TestPruneHistory(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 10; i++ {
		if _, err := db.RecordVisit("seed", time.Unix(int64(i), 0)); err != nil {
			t.Fatalf("RecordVisit() failed: %v", err)
		}
	}

	deleted, err := db.PruneHistory(4)
	if err != nil {
		t.Fatalf("PruneHistory() failed: %v", err)
	}
	if deleted != 6 {
		t.Errorf("PruneHistory(4) deleted %d, want 6", deleted)
	}

	visits, _ := db.RecentVisits(100)
	if len(visits) != 4 || visits[0].ID != 10 || visits[3].ID != 7 {
		t.Errorf("after prune: %+v", visits)
	}
}
