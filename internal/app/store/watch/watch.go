// Package watch turns MongoDB change streams into per-project change
// notifications. Change streams need a replica set; on a standalone server
// Subscribe fails and callers fall back to polling snapshots.
package watch

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Watchable lists the collections a project subscriber may follow.
var Watchable = []string{
	indexes.Channels,
	indexes.CampaignTypes,
	indexes.Campaigns,
	indexes.Phases,
	indexes.Branding,
	indexes.ProjectMembers,
	indexes.Invitations,
	indexes.Projects,
}

// ErrUnknownCollection is returned for a collection not in Watchable.
var ErrUnknownCollection = errors.New("collection cannot be watched")

// Change is one notification. DocumentID is the changed document's _id.
type Change struct {
	Collection string
	Op         string
	DocumentID any
}

// Watcher opens change streams on one database.
type Watcher struct {
	db  *mongo.Database
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{db: db, log: logger}
}

// IsWatchable reports whether coll is in Watchable.
func IsWatchable(coll string) bool {
	for _, c := range Watchable {
		if c == coll {
			return true
		}
	}
	return false
}

// keyedByProject lists collections whose _id is the project id. Every
// change to them, deletes included, is matched on documentKey alone.
var keyedByProject = map[string]bool{
	indexes.Projects: true,
	indexes.Phases:   true,
	indexes.Branding: true,
}

// pipeline matches documents scoped to projectID. Deletes carry no full
// document, so in collections keyed by their own _id every delete is
// passed through and scope decides whether it belongs to the project.
func pipeline(projectID primitive.ObjectID, coll string) mongo.Pipeline {
	arms := bson.A{
		bson.M{"fullDocument.project_id": projectID},
		bson.M{"documentKey._id": projectID},
	}
	if !keyedByProject[coll] {
		arms = append(arms, bson.M{"operationType": "delete"})
	}
	return mongo.Pipeline{{{Key: "$match", Value: bson.M{"$or": arms}}}}
}

type event struct {
	Op  string `bson:"operationType"`
	Key struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
	Doc *struct {
		ProjectID primitive.ObjectID `bson:"project_id"`
	} `bson:"fullDocument"`
}

// scope tracks the _ids known to belong to one project within one
// collection, so deletes from other projects are dropped.
type scope struct {
	project primitive.ObjectID
	ids     map[any]struct{}
}

func newScope(projectID primitive.ObjectID, ids []any) *scope {
	s := &scope{project: projectID, ids: make(map[any]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// admit reports whether ev concerns the project, updating the known ids.
func (s *scope) admit(ev event) bool {
	id := ev.Key.ID
	if oid, ok := id.(primitive.ObjectID); ok && oid == s.project {
		return true
	}
	if ev.Op == "delete" {
		if _, ok := s.ids[id]; !ok {
			return false
		}
		delete(s.ids, id)
		return true
	}
	if ev.Doc != nil && ev.Doc.ProjectID == s.project {
		s.ids[id] = struct{}{}
		return true
	}
	return false
}

// existingIDs reads the _ids a project already owns in coll.
func (w *Watcher) existingIDs(ctx context.Context, coll string, projectID primitive.ObjectID) ([]any, error) {
	if keyedByProject[coll] {
		return nil, nil
	}
	cur, err := w.db.Collection(coll).Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ids []any
	for cur.Next(ctx) {
		var row struct {
			ID any `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Subscribe opens one independent stream per collection and merges them
// into the returned channel. The channel is closed once ctx ends and every
// stream has shut down. All streams are opened before Subscribe returns.
func (w *Watcher) Subscribe(ctx context.Context, projectID primitive.ObjectID, collections []string) (<-chan Change, error) {
	for _, c := range collections {
		if !IsWatchable(c) {
			return nil, ErrUnknownCollection
		}
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	streams := make([]*mongo.ChangeStream, 0, len(collections))
	scopes := make([]*scope, 0, len(collections))
	closeAll := func() {
		for _, open := range streams {
			_ = open.Close(context.Background())
		}
	}
	for _, c := range collections {
		cs, err := w.db.Collection(c).Watch(ctx, pipeline(projectID, c), opts)
		if err != nil {
			closeAll()
			return nil, err
		}
		streams = append(streams, cs)
		// Seeded after the stream opens so a document created in between
		// is still recorded from its insert event.
		ids, err := w.existingIDs(ctx, c, projectID)
		if err != nil {
			closeAll()
			return nil, err
		}
		scopes = append(scopes, newScope(projectID, ids))
	}

	out := make(chan Change, 16)
	var wg sync.WaitGroup
	for i, cs := range streams {
		wg.Add(1)
		go w.pump(ctx, collections[i], cs, scopes[i], out, &wg)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func (w *Watcher) pump(ctx context.Context, coll string, cs *mongo.ChangeStream, sc *scope, out chan<- Change, wg *sync.WaitGroup) {
	defer wg.Done()
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var ev event
		if err := cs.Decode(&ev); err != nil {
			w.log.Warn("change stream decode failed", zap.String("collection", coll), zap.Error(err))
			continue
		}
		if !sc.admit(ev) {
			continue
		}
		select {
		case out <- Change{Collection: coll, Op: ev.Op, DocumentID: ev.Key.ID}:
		case <-ctx.Done():
			return
		}
	}
	if err := cs.Err(); err != nil && ctx.Err() == nil {
		w.log.Warn("change stream ended", zap.String("collection", coll), zap.Error(err))
	}
}
