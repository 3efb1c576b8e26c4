package engine

import (
	"testing"

	"github.com/piwi3910/SeamNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSimple(t *testing.T) {
	assert.True(t, isSimple(model.Rect(10, 10)))

	bowtie := model.Outline{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	assert.False(t, isSimple(bowtie))

	// Vertex touching a non-adjacent edge.
	touching := model.Outline{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	assert.False(t, isSimple(touching))

	assert.False(t, isSimple(model.Outline{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}

func TestCleanRingRemovesCollinearAndDuplicates(t *testing.T) {
	ring := model.Outline{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0},
		{X: 100, Y: 100}, {X: 0, Y: 100},
	}
	got := cleanRing(ring)
	assert.Len(t, got, 4)
	assert.InDelta(t, 10000.0, got.SignedArea(), 1e-9)
}

func TestCleanRingRemovesSpike(t *testing.T) {
	ring := model.Outline{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100},
		{X: 50, Y: 100}, {X: 50, Y: 150}, {X: 50, Y: 100}, // zero-width spike
		{X: 0, Y: 100},
	}
	got := cleanRing(ring)
	assert.Len(t, got, 4)
	assert.True(t, isSimple(got))
}

func TestOverlaps(t *testing.T) {
	region := model.Rect(100, 100)

	touching := model.Rect(100, 100).Translate(100, 0)
	assert.False(t, overlaps(touching, region), "edge contact is not overlap")

	corner := model.Rect(50, 50).Translate(100, 100)
	assert.False(t, overlaps(corner, region), "vertex contact is not overlap")

	crossing := model.Rect(100, 100).Translate(50, 50)
	assert.True(t, overlaps(crossing, region))

	inside := model.Rect(10, 10).Translate(45, 45)
	assert.True(t, overlaps(inside, region))

	enclosing := model.Rect(300, 300).Translate(-100, -100)
	assert.True(t, overlaps(enclosing, region))

	identical := model.Rect(100, 100)
	assert.True(t, overlaps(identical, region))

	far := model.Rect(10, 10).Translate(500, 500)
	assert.False(t, overlaps(far, region))
}

func TestOutlineDistance(t *testing.T) {
	a := model.Rect(100, 100)
	b := model.Rect(100, 100).Translate(110, 0)
	assert.InDelta(t, 10.0, outlineDistance(a, b, 50), 1e-9)
}

func TestSpliceUnionSideBySide(t *testing.T) {
	boundary := model.Rect(100, 100)
	placed := model.Rect(100, 100).Translate(100, 0)

	union := spliceUnion(boundary, 1, placed, 0)
	require.NotNil(t, union)
	assert.Len(t, union, 4)
	assert.InDelta(t, 20000.0, union.SignedArea(), 1e-6)
	requireBox(t, union, 0, 0, 200, 100)
}

func TestSpliceUnionClosesGap(t *testing.T) {
	boundary := model.Rect(100, 100)
	placed := model.Rect(100, 100).Translate(110, 0)

	union := spliceUnion(boundary, 1, placed, 10)
	require.NotNil(t, union)
	assert.InDelta(t, 21000.0, union.SignedArea(), 1e-6)
}

func TestSpliceUnionRejectsDetachedPiece(t *testing.T) {
	boundary := model.Rect(100, 100)

	gap := model.Rect(100, 100).Translate(150, 0)
	assert.Nil(t, spliceUnion(boundary, 1, gap, 0), "piece does not touch the edge")

	beyond := model.Rect(100, 100).Translate(100, 200)
	assert.Nil(t, spliceUnion(boundary, 1, beyond, 0), "piece is past the end of the edge")
}

func TestEdgeFrameNormals(t *testing.T) {
	rect := model.Rect(100, 50)

	in, ok := edgeFrame(rect, 0, true)
	require.True(t, ok)
	assert.Equal(t, model.Point2D{X: 0, Y: 1}, in.normal)

	out, ok := edgeFrame(rect, 0, false)
	require.True(t, ok)
	assert.Equal(t, model.Point2D{X: 0, Y: -1}, out.normal)

	_, ok = edgeFrame(model.Outline{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}}, 0, true)
	assert.False(t, ok, "zero-length edge")
}
