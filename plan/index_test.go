package plan

import (
	"math"
	"testing"
)

func squareAt(x, y, side float64) Ring {
	return Ring{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
	}
}

func TestSpatialIndexInsertAndQuery(t *testing.T) {
	ix := NewSpatialIndex(10)

	if !ix.Insert("a", squareAt(0, 0, 4)) {
		t.Fatal("Insert(a) = false")
	}
	if !ix.Insert("b", squareAt(20, 20, 4)) {
		t.Fatal("Insert(b) = false")
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}

	hits := ix.Query(Point{X: 1, Y: 1}, Point{X: 3, Y: 3})
	if !hits["a"] || hits["b"] {
		t.Errorf("Query(near a) = %v, want only a", hits)
	}

	hits = ix.Query(Point{X: -100, Y: -100}, Point{X: 100, Y: 100})
	if len(hits) != 2 {
		t.Errorf("Query(everything) = %v, want both", hits)
	}
}

func TestSpatialIndexNarrowPhase(t *testing.T) {
	// Both elements land in grid cell (0,0), but only one intersects the
	// query rectangle.
	ix := NewSpatialIndex(10)
	ix.Insert("near", squareAt(0, 0, 1))
	ix.Insert("far", squareAt(8, 8, 1))

	hits := ix.Query(Point{X: 0, Y: 0}, Point{X: 2, Y: 2})
	if !hits["near"] || hits["far"] {
		t.Errorf("Query() = %v, want only near", hits)
	}
}

func TestSpatialIndexQueryNormalizesRect(t *testing.T) {
	ix := NewSpatialIndex(10)
	ix.Insert("a", squareAt(0, 0, 4))

	// Swapped corners must behave the same as ordered ones.
	hits := ix.Query(Point{X: 3, Y: 3}, Point{X: 1, Y: 1})
	if !hits["a"] {
		t.Errorf("Query(swapped corners) = %v, want a", hits)
	}
}

func TestSpatialIndexReinsertMoves(t *testing.T) {
	ix := NewSpatialIndex(10)
	ix.Insert("a", squareAt(0, 0, 2))
	ix.Insert("a", squareAt(50, 50, 2))

	if ix.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after re-insert", ix.Len())
	}
	if hits := ix.Query(Point{X: 0, Y: 0}, Point{X: 5, Y: 5}); hits["a"] {
		t.Error("element still found at old location after re-insert")
	}
	if hits := ix.Query(Point{X: 49, Y: 49}, Point{X: 53, Y: 53}); !hits["a"] {
		t.Error("element not found at new location after re-insert")
	}
}

func TestSpatialIndexRemove(t *testing.T) {
	ix := NewSpatialIndex(10)
	ix.Insert("a", squareAt(0, 0, 2))
	ix.Remove("a")
	ix.Remove("missing") // no-op

	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if hits := ix.Query(Point{X: -1, Y: -1}, Point{X: 5, Y: 5}); len(hits) != 0 {
		t.Errorf("Query() after Remove = %v, want empty", hits)
	}
	if _, ok := ix.ElementBounds("a"); ok {
		t.Error("ElementBounds() still present after Remove")
	}
}

func TestSpatialIndexInvalidRing(t *testing.T) {
	ix := NewSpatialIndex(10)
	if ix.Insert("bad", Ring{}) {
		t.Error("Insert(empty ring) = true, want false")
	}
	if ix.Insert("bad", Ring{{X: math.NaN(), Y: math.NaN()}}) {
		t.Error("Insert(non-finite ring) = true, want false")
	}
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
}

func TestSpatialIndexQueryPoint(t *testing.T) {
	ix := NewSpatialIndex(10)
	ix.Insert("a", squareAt(0, 0, 4))

	if hits := ix.QueryPoint(5, 5, 1.5); !hits["a"] {
		t.Errorf("QueryPoint(5,5,1.5) = %v, want a", hits)
	}
	if hits := ix.QueryPoint(10, 10, 1); len(hits) != 0 {
		t.Errorf("QueryPoint(10,10,1) = %v, want empty", hits)
	}
}

func TestSpatialIndexElementBounds(t *testing.T) {
	ix := NewSpatialIndex(10)
	ix.Insert("a", squareAt(1, 2, 3))

	b, ok := ix.ElementBounds("a")
	if !ok {
		t.Fatal("ElementBounds(a) ok = false")
	}
	want := Bounds{MinX: 1, MinY: 2, MaxX: 4, MaxY: 5}
	if b != want {
		t.Errorf("ElementBounds(a) = %+v, want %+v", b, want)
	}
}
