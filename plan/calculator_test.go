package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatorProperties(t *testing.T) {
	c := NewCalculator(0)
	props := c.Properties(squareAt(0, 0, 4), 0)

	assert.Equal(t, 16.0, props.Area)
	assert.Equal(t, 16.0, props.Perimeter)
	assert.Equal(t, Point{X: 2, Y: 2}, props.Centroid)
	assert.Equal(t, Bounds{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}, props.Bounds)
	assert.False(t, props.Clockwise)
	assert.False(t, props.SelfIntersecting)
	assert.Equal(t, 0.79, props.Complexity)

	// Volume uses the default height, but Height stays 0 when the caller
	// did not supply one.
	assert.Equal(t, 48.0, props.Volume)
	assert.Equal(t, 0.0, props.Height)
}

func TestCalculatorPropertiesExplicitHeight(t *testing.T) {
	c := NewCalculator(0)
	props := c.Properties(squareAt(0, 0, 4), 2.5)

	assert.Equal(t, 40.0, props.Volume)
	assert.Equal(t, 2.5, props.Height)
}

func TestCalculatorPropertiesClockwise(t *testing.T) {
	c := NewCalculator(0)
	cw := Ring{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}}
	props := c.Properties(cw, 0)

	assert.True(t, props.Clockwise)
	assert.Equal(t, 16.0, props.Area, "area is reported as absolute value")
}

func TestCalculatorPropertiesSelfIntersecting(t *testing.T) {
	c := NewCalculator(0)
	bowtie := Ring{{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	props := c.Properties(bowtie, 0)

	assert.True(t, props.SelfIntersecting)
}

func TestCalculatorCache(t *testing.T) {
	c := NewCalculator(0)
	ring := squareAt(0, 0, 4)

	first := c.Properties(ring, 0)
	second := c.Properties(ring, 0)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.CacheLen())

	// Same ring at a different height is a distinct entry.
	c.Properties(ring, 2.5)
	assert.Equal(t, 2, c.CacheLen())

	c.ClearCache()
	assert.Equal(t, 0, c.CacheLen())
}

func TestAdjacencyDirect(t *testing.T) {
	c := NewCalculator(0)
	a := squareAt(0, 0, 1)
	b := squareAt(1, 0, 1)

	rel := c.Adjacency(a, b, 0.1)
	if rel == nil {
		t.Fatal("Adjacency() = nil, want direct relationship")
	}

	assert.Equal(t, AdjacencyDirect, rel.Kind)
	assert.Equal(t, 1.0, rel.SharedBoundary)
	assert.Equal(t, 1.0, rel.CentroidDistance)
	assert.Equal(t, 1.0, rel.Confidence)
	assert.Equal(t, []Point{{X: 1, Y: 0}, {X: 1, Y: 1}}, rel.ContactPoints)
}

func TestAdjacencyIndirect(t *testing.T) {
	c := NewCalculator(0)
	a := squareAt(0, 0, 0.1)
	b := squareAt(0.15, 0, 0.1)

	rel := c.Adjacency(a, b, 0.1)
	if rel == nil {
		t.Fatal("Adjacency() = nil, want indirect relationship")
	}

	assert.Equal(t, AdjacencyIndirect, rel.Kind)
	assert.Equal(t, 0.15, rel.CentroidDistance)
	assert.Equal(t, 0.25, rel.Confidence)
}

func TestAdjacencyNone(t *testing.T) {
	c := NewCalculator(0)
	a := squareAt(0, 0, 1)
	b := squareAt(10, 10, 1)

	assert.Nil(t, c.Adjacency(a, b, 0.1))
}

func TestAdjacencyDegenerateRing(t *testing.T) {
	c := NewCalculator(0)
	assert.Nil(t, c.Adjacency(Ring{{X: 0, Y: 0}}, squareAt(0, 0, 1), 0.1))
}

func TestContactPointsCapped(t *testing.T) {
	// Two identical dense rings: every vertex pairs with itself, so the
	// contact list hits the cap.
	var ring Ring
	for i := 0; i < 20; i++ {
		ring = append(ring, Point{X: float64(i), Y: 0})
	}
	ring = append(ring, Point{X: 19, Y: 5}, Point{X: 0, Y: 5})

	pts := contactPoints(ring, ring, 0.01)
	assert.Len(t, pts, 10)
}
