// internal/app/features/events/handler.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/store/watch"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/app/system/permissions"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultHeartbeat is the interval between keep-alive comments.
const DefaultHeartbeat = 25 * time.Second

var errUnknownCollection = apperr.Validation("unknown_collection", "One of the requested collections cannot be watched.")

// gated lists collections whose snapshots need more than project view
// access. They match the gates on the corresponding REST listings.
var gated = map[string]func(permissions.Capabilities) bool{
	indexes.Invitations: func(c permissions.Capabilities) bool { return c.InviteMembers },
}

// allowed filters collections by caps. A collection that was asked for by
// name and is not permitted fails the request; one that came from the
// default set is dropped.
func allowed(collections []string, explicit bool, caps permissions.Capabilities) ([]string, bool) {
	out := collections[:0:0]
	for _, c := range collections {
		if check, ok := gated[c]; ok && !check(caps) {
			if explicit {
				return nil, false
			}
			continue
		}
		out = append(out, c)
	}
	return out, true
}

// Subscriber is satisfied by *watch.Watcher.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID primitive.ObjectID, collections []string) (<-chan watch.Change, error)
}

// Loader reads the current state of one collection for a project. Its
// result is sent with every change to that collection.
type Loader func(ctx context.Context, projectID primitive.ObjectID) (any, error)

// Handler streams per-project change notifications.
type Handler struct {
	Watcher   Subscriber
	Loaders   map[string]Loader
	Heartbeat time.Duration
	Log       *zap.Logger
}

// NewHandler builds a Handler. loaders is keyed by collection name;
// collections without a loader get change notices with no snapshot.
func NewHandler(w Subscriber, loaders map[string]Loader, logger *zap.Logger) *Handler {
	return &Handler{Watcher: w, Loaders: loaders, Heartbeat: DefaultHeartbeat, Log: logger}
}

type ready struct {
	Subscription string   `json:"subscription"`
	Collections  []string `json:"collections"`
}

type changeEvent struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         any    `json:"id,omitempty"`
	Snapshot   any    `json:"snapshot,omitempty"`
	Stale      bool   `json:"stale,omitempty"`
}

// parseCollections reads the comma-separated collections parameter. Empty
// means every watchable collection.
func parseCollections(raw string) ([]string, bool) {
	if isDefault(raw) {
		return append([]string(nil), watch.Watchable...), true
	}
	seen := map[string]bool{}
	var out []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		if !watch.IsWatchable(c) {
			return nil, false
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, len(out) > 0
}

func isDefault(raw string) bool { return strings.TrimSpace(raw) == "" }

// ServeEvents serves GET /projects/{projectID}/events?collections=a,b.
// Each change is sent as an "event: change" frame carrying the collection's
// fresh snapshot. When the deployment cannot open change streams the
// response is 204, which tells EventSource clients to stop reconnecting
// and poll instead.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	raw := r.URL.Query().Get("collections")
	collections, ok := parseCollections(raw)
	if !ok {
		respond.Error(w, h.Log, errUnknownCollection)
		return
	}
	if collections, ok = allowed(collections, !isDefault(raw), a.Caps); !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, h.Log, errors.New("response writer cannot stream"))
		return
	}

	ctx := r.Context()
	changes, err := h.Watcher.Subscribe(ctx, a.Project.ID, collections)
	if err != nil {
		if errors.Is(err, watch.ErrUnknownCollection) {
			respond.Error(w, h.Log, errUnknownCollection)
			return
		}
		h.Log.Info("realtime unavailable", zap.String("project_id", a.Project.ID.Hex()), zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sub := uuid.NewString()
	log := h.Log.With(zap.String("subscription", sub), zap.String("project_id", a.Project.ID.Hex()))

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := newStream(w, flusher)
	hello, _ := json.Marshal(ready{Subscription: sub, Collections: collections})
	if err := s.Send("ready", hello); err != nil {
		return
	}
	log.Debug("subscription opened", zap.Strings("collections", collections))

	every := h.Heartbeat
	if every <= 0 {
		every = DefaultHeartbeat
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("subscription closed")
			return
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				return
			}
		case ch, ok := <-changes:
			if !ok {
				return
			}
			payload, err := json.Marshal(h.describe(ctx, a.Project.ID, ch, log))
			if err != nil {
				log.Warn("encode change failed", zap.Error(err))
				continue
			}
			if err := s.Send("change", payload); err != nil {
				return
			}
		}
	}
}

// describe attaches the collection snapshot. A failed load still sends the
// notice, marked stale, so the client can refetch on its own.
func (h *Handler) describe(ctx context.Context, projectID primitive.ObjectID, ch watch.Change, log *zap.Logger) changeEvent {
	ev := changeEvent{Collection: ch.Collection, Op: ch.Op, ID: ch.DocumentID}
	load, ok := h.Loaders[ch.Collection]
	if !ok {
		return ev
	}
	lctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	snap, err := load(lctx, projectID)
	if err != nil {
		log.Warn("snapshot load failed", zap.String("collection", ch.Collection), zap.Error(err))
		ev.Stale = true
		return ev
	}
	ev.Snapshot = snap
	return ev
}
