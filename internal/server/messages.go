package server

import (
	"context"
	"fmt"

	"github.com/zeusync/proximity/internal/core/level"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
	"github.com/zeusync/proximity/internal/sim"
)

// Message types sent to feed clients.
const (
	TypeHello     = "hello"
	TypeHighlight = "highlight"
	TypeAck       = "ack"
	TypeSnapshot  = "snapshot"
	TypeError     = "error"
)

// Command actions accepted from feed clients.
const (
	ActionSpawn       = "spawn"
	ActionSpawnRandom = "spawn_random"
	ActionDestroy     = "destroy"
	ActionSnapshot    = "snapshot"
	ActionSave        = "save"
	ActionLoad        = "load"
)

// Commander is the part of the simulation the feed can drive.
type Commander interface {
	Spawn(ctx context.Context, typ world.ObjectType, pos physics.Vec3) (world.Object, error)
	SpawnRandom(ctx context.Context, typ world.ObjectType) (world.Object, error)
	Destroy(ctx context.Context, h proximity.Handle) error
	Snapshot(ctx context.Context) (sim.Snapshot, error)
	SaveLevel(ctx context.Context, name string) error
	LoadLevel(ctx context.Context, name string) error
}

type Message struct {
	Type      string               `json:"type"`
	Action    string               `json:"action,omitempty"`
	Highlight *sim.HighlightChange `json:"highlight,omitempty"`
	Object    *ObjectView          `json:"object,omitempty"`
	Snapshot  *SnapshotView        `json:"snapshot,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type ObjectView struct {
	Handle   proximity.Handle `json:"handle"`
	Type     string           `json:"type"`
	Position level.Position   `json:"position"`
}

func objectView(o world.Object) *ObjectView {
	return &ObjectView{Handle: o.Handle, Type: o.Type.String(), Position: level.FromVec(o.Position)}
}

type SnapshotView struct {
	Tick     uint64           `json:"tick"`
	Observer level.Position   `json:"observer"`
	Closest  proximity.Handle `json:"closest,omitempty"`
	Second   proximity.Handle `json:"second,omitempty"`
	Objects  int              `json:"objects"`
	Items    int              `json:"items"`
	Bots     int              `json:"bots"`
}

type Command struct {
	Action   string           `json:"action"`
	Type     string           `json:"type,omitempty"`
	Position *level.Position  `json:"position,omitempty"`
	Handle   proximity.Handle `json:"handle,omitempty"`
	Name     string           `json:"name,omitempty"`
}

func (c Command) objectType() (world.ObjectType, error) {
	if c.Type == "" {
		return world.Item, nil
	}
	return world.ParseObjectType(c.Type)
}

// execute runs cmd against the simulation and builds the reply.
func (s *Server) execute(ctx context.Context, cmd Command) Message {
	reply := Message{Type: TypeAck, Action: cmd.Action}
	var err error

	switch cmd.Action {
	case ActionSpawn:
		var typ world.ObjectType
		if typ, err = cmd.objectType(); err != nil {
			break
		}
		if cmd.Position == nil {
			err = fmt.Errorf("%w: spawn needs a position", ErrInvalidMessage)
			break
		}
		var obj world.Object
		if obj, err = s.sim.Spawn(ctx, typ, cmd.Position.Vec()); err == nil {
			reply.Object = objectView(obj)
		}
	case ActionSpawnRandom:
		var typ world.ObjectType
		if typ, err = cmd.objectType(); err != nil {
			break
		}
		var obj world.Object
		if obj, err = s.sim.SpawnRandom(ctx, typ); err == nil {
			reply.Object = objectView(obj)
		}
	case ActionDestroy:
		err = s.sim.Destroy(ctx, cmd.Handle)
	case ActionSnapshot:
		var snap sim.Snapshot
		if snap, err = s.sim.Snapshot(ctx); err == nil {
			reply.Type = TypeSnapshot
			reply.Snapshot = &SnapshotView{
				Tick:     snap.Tick,
				Observer: level.FromVec(snap.Observer),
				Closest:  snap.State.Closest,
				Second:   snap.State.Second,
				Objects:  snap.Objects,
				Items:    snap.Items,
				Bots:     snap.Bots,
			}
		}
	case ActionSave:
		err = s.sim.SaveLevel(ctx, cmd.Name)
	case ActionLoad:
		err = s.sim.LoadLevel(ctx, cmd.Name)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	if err != nil {
		return Message{Type: TypeError, Action: cmd.Action, Error: err.Error()}
	}
	return reply
}
