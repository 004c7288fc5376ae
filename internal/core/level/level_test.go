package level

import (
	"bytes"
	"context"
	"strings"
	"testing"

	minio "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
)

type resetCounter int

func (r *resetCounter) Reset() { *r++ }

func TestCaptureRestore(t *testing.T) {
	src := world.New()
	src.Spawn(world.Item, physics.Vec3{X: 1, Y: 2, Z: 3})
	src.Spawn(world.Bot, physics.Vec3{X: -4})
	observer := physics.Vec3{Z: 7}

	l := Capture(src, observer)
	require.Len(t, l.Objects, 3)
	assert.Equal(t, world.Player, l.Objects[0].Type)

	dst := world.New()
	dst.Spawn(world.Item, physics.Vec3{X: 99})
	replaced := 0
	dst.OnReplaced(func() { replaced++ })
	var resets resetCounter

	got, err := Restore(l, dst, &resets)
	require.NoError(t, err)

	assert.Equal(t, observer, got)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, resetCounter(1), resets)
	require.Equal(t, 2, dst.Len())
	objs := dst.Objects()
	assert.Equal(t, physics.Vec3{X: 1, Y: 2, Z: 3}, objs[0].Position)
	assert.Equal(t, world.Bot, objs[1].Type)
}

func TestRestoreWithoutPlayerStartsAtOrigin(t *testing.T) {
	w := world.New()
	observer, err := Restore(Level{Objects: []Record{{Type: world.Item, Position: Position{X: 2}}}}, w, nil)
	require.NoError(t, err)
	assert.Equal(t, physics.Origin, observer)
	assert.Equal(t, 1, w.Len())
}

func TestRestoreRejectsBadRecords(t *testing.T) {
	w := world.New()
	w.Spawn(world.Item, physics.Origin)

	_, err := Restore(Level{}, w, nil)
	assert.ErrorIs(t, err, ErrNoObjects)

	_, err = Restore(Level{Objects: []Record{{Type: world.ObjectType(9)}}}, w, nil)
	assert.ErrorIs(t, err, ErrBadRecord)
	assert.ErrorIs(t, err, world.ErrUnknownObjectType)
	assert.Equal(t, 1, w.Len())
}

func TestDecodeSaveFormat(t *testing.T) {
	doc := `{"objects":[
		{"objectType":0,"position":{"x":1,"y":2,"z":3}},
		{"objectType":2,"position":{"x":-1.5,"y":0,"z":0.25}}
	]}`

	l, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, Level{Objects: []Record{
		{Type: world.Player, Position: Position{X: 1, Y: 2, Z: 3}},
		{Type: world.Item, Position: Position{X: -1.5, Z: 0.25}},
	}}, l)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, l))
	assert.Contains(t, buf.String(), `"objectType": 2`)

	_, err = Decode(strings.NewReader(`{"objects":`))
	assert.Error(t, err)
	assert.ErrorIs(t, Encode(&buf, Level{}), ErrNoObjects)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	l := Level{Objects: []Record{{Type: world.Player}, {Type: world.Bot, Position: Position{Y: 3}}}}

	require.NoError(t, store.Save(ctx, "level-1", l))
	got, err := store.Load(ctx, "level-1")
	require.NoError(t, err)
	assert.Equal(t, l, got)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Save(ctx, "nil", Level{}), ErrNoObjects)
	assert.ErrorIs(t, store.Save(ctx, "../escape", l), ErrInvalidName)
	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Save(cancelled, "level-2", l), context.Canceled)
}

type memBucket struct {
	ensured int
	objects map[string][]byte
}

func (b *memBucket) ensure(context.Context) error {
	b.ensured++
	return nil
}

func (b *memBucket) put(_ context.Context, key string, data []byte) error {
	b.objects[key] = bytes.Clone(data)
	return nil
}

func (b *memBucket) get(_ context.Context, key string) ([]byte, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return data, nil
}

func TestMinIOStore(t *testing.T) {
	ctx := context.Background()
	mem := &memBucket{objects: make(map[string][]byte)}
	store := &MinIOStore{bucket: mem, prefix: "levels"}
	l := Level{Objects: []Record{{Type: world.Player, Position: Position{X: 1}}}}

	require.NoError(t, store.Save(ctx, "arena", l))
	assert.Contains(t, mem.objects, "levels/arena.json")
	assert.Equal(t, 1, mem.ensured)

	got, err := store.Load(ctx, "arena")
	require.NoError(t, err)
	assert.Equal(t, l, got)

	_, err = store.Load(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, "arena", Level{}), ErrNoObjects)
}
