package quest

import "testing"

func TestBitmap(t *testing.T) {
	var b Bitmap
	if b.Has(DailyCheckin) {
		t.Fatal("empty bitmap reports completion")
	}

	b.Set(DailyCheckin)
	b.Set(OpenCapsule)
	if !b.Has(DailyCheckin) || !b.Has(OpenCapsule) {
		t.Fatalf("set bits not readable, bitmap=%s", b)
	}
	if b.Has(RelaySignal) {
		t.Fatal("unset bit reported complete")
	}
	if b.CompletedCount() != 2 {
		t.Fatalf("CompletedCount = %d, want 2", b.CompletedCount())
	}

	// Out-of-range ids are ignored on write and false on read.
	b.Set(0)
	b.Set(11)
	if b.CompletedCount() != 2 {
		t.Fatal("out-of-range Set modified the bitmap")
	}
	if b.Has(0) || b.Has(11) || b.Has(-1) {
		t.Fatal("out-of-range Has returned true")
	}
}

func TestBitmapString(t *testing.T) {
	var b Bitmap
	b.Set(DailyCheckin)
	b.Set(UpdateAtmosphere)
	if got := b.String(); got != "0000000101" {
		t.Errorf("String() = %q, want %q", got, "0000000101")
	}
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	if len(cat) != Count {
		t.Fatalf("catalog has %d quests, want %d", len(cat), Count)
	}
	points := []int{50, 100, 30, 40, 60, 20, 200, 500, 80, 1000}
	for i, q := range cat {
		if q.ID != i+1 {
			t.Errorf("quest %d has id %d", i, q.ID)
		}
		if q.Points != points[i] {
			t.Errorf("quest %d points = %d, want %d", q.ID, q.Points, points[i])
		}
	}
	if Points(0) != 0 || Points(11) != 0 {
		t.Error("out-of-range Points should be 0")
	}
}
