package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGatewayGetMiss(t *testing.T) {
	g := NewMemoryGateway()

	_, err := g.Get(context.Background(), "1", CollectionStudyData, "2026-03-04")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGatewaySetAndUpdate(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	require.NoError(t, g.Set(ctx, "1", CollectionStudyData, "2026-03-04", Document{
		"activeStudyTime": 30,
		"isTemporary":     false,
	}))

	require.NoError(t, g.Update(ctx, "1", CollectionStudyData, "2026-03-04", Document{
		"activeStudyTime": 45,
	}))

	doc, err := g.Get(ctx, "1", CollectionStudyData, "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, 45, doc.Int("activeStudyTime"))
	assert.False(t, doc.Bool("isTemporary"))
}

func TestMemoryGatewayGetReturnsCopy(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	require.NoError(t, g.Set(ctx, "1", CollectionProfiles, "1", Document{"name": "Ada"}))

	doc, err := g.Get(ctx, "1", CollectionProfiles, "1")
	require.NoError(t, err)
	doc["name"] = "changed"

	again, err := g.Get(ctx, "1", CollectionProfiles, "1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.String("name"))
}

func TestMemoryGatewayDeleteUserCascades(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	require.NoError(t, g.Set(ctx, "1", CollectionProfiles, "1", Document{"name": "Ada"}))
	require.NoError(t, g.Set(ctx, "1", CollectionStudyData, "2026-03-04", Document{"activeStudyTime": 30}))
	require.NoError(t, g.Set(ctx, "2", CollectionProfiles, "2", Document{"name": "Grace"}))

	require.NoError(t, g.DeleteUser(ctx, "1"))

	_, err := g.Get(ctx, "1", CollectionProfiles, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.Get(ctx, "1", CollectionStudyData, "2026-03-04")
	assert.ErrorIs(t, err, ErrNotFound)

	// Other users are untouched.
	_, err = g.Get(ctx, "2", CollectionProfiles, "2")
	assert.NoError(t, err)
}

func TestDocumentTypedReads(t *testing.T) {
	doc := Document{
		"i":   7,
		"i64": int64(9),
		"f":   float64(3),
		"s":   "hello",
		"b":   true,
	}

	assert.Equal(t, 7, doc.Int("i"))
	assert.Equal(t, 9, doc.Int("i64"))
	assert.Equal(t, 3, doc.Int("f"))
	assert.Equal(t, 0, doc.Int("missing"))
	assert.Equal(t, "hello", doc.String("s"))
	assert.Equal(t, "", doc.String("missing"))
	assert.True(t, doc.Bool("b"))
	assert.False(t, doc.Bool("missing"))
}
