// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names shared by stores and index sets.
const (
	Users          = "users"
	Identities     = "identities"
	PasswordResets = "password_resets"
	Projects       = "projects"
	ProjectMembers = "project_members"
	Invitations    = "invitations"
	Channels       = "channels"
	CampaignTypes  = "campaign_types"
	Campaigns      = "campaigns"
	Phases         = "phases"
	Branding       = "branding"
	AuditEvents    = "audit_events"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{Users, userIndexes()},
		{Identities, identityIndexes()},
		{PasswordResets, passwordResetIndexes()},
		{Projects, projectIndexes()},
		{ProjectMembers, memberIndexes()},
		{Invitations, invitationIndexes()},
		{Channels, channelIndexes()},
		{CampaignTypes, campaignTypeIndexes()},
		{Campaigns, campaignIndexes()},
		{AuditEvents, auditIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
	TTL     *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func partialSig(d any) string {
	if d == nil {
		return ""
	}
	b, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return fmt.Sprint(d)
	}
	return string(b)
}

func boolOf(b *bool) bool { return b != nil && *b }

type desired struct {
	name    string
	unique  bool
	partial string
	ttl     *int32
}

func describe(m mongo.IndexModel) desired {
	var d desired
	if o := m.Options; o != nil {
		if o.Name != nil {
			d.name = *o.Name
		}
		d.unique = boolOf(o.Unique)
		if o.PartialFilterExpression != nil {
			d.partial = partialSig(o.PartialFilterExpression)
		}
		d.ttl = o.ExpireAfterSeconds
	}
	return d
}

func (d desired) matches(ex existingIndex) bool {
	if d.unique != boolOf(ex.Unique) {
		return false
	}
	exPartial := ""
	if len(ex.Partial) > 0 {
		exPartial = partialSig(ex.Partial)
	}
	if d.partial != exPartial {
		return false
	}
	if (d.ttl == nil) != (ex.TTL == nil) || (d.ttl != nil && *d.ttl != *ex.TTL) {
		return false
	}
	return d.name == "" || d.name == ex.Name
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listIndexes(ctx, coll)

	for _, m := range models {
		want := describe(m)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if want.matches(ex) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Same keys with different name or options: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), want.name, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isDuplicateKeyErr(err) && want.unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), want.name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), want.name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", want.name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", sig),
			zap.Bool("unique", want.unique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Admin dashboard list sorted by name.
		{
			Keys:    bson.D{{Key: "display_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_displaynameci__id"),
		},
	}
}

func identityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_identities_email"),
		},
	}
}

func passwordResetIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_password_resets_token"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_password_resets_user"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_password_resets_expires"),
		},
	}
}

func projectIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// "Owned" branch of the accessible-projects query.
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_projects_owner_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_projects_created"),
		},
	}
}

func memberIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_members_project_user"),
		},
		// "Member" branch of the accessible-projects query.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_members_user_role"),
		},
	}
}

func invitationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invitations_token"),
		},
		// At most one pending invitation per (project, email).
		{
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "pending"}}).
				SetName("uniq_invitations_project_email_pending"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_invitations_project_created"),
		},
		// Expiry sweep.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_invitations_status_expires"),
		},
	}
}

func channelIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("idx_channels_project_order"),
		},
	}
}

func campaignTypeIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_campaign_types_project_created"),
		},
	}
}

func campaignIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "start_date", Value: 1}},
			Options: options.Index().SetName("idx_campaigns_project_start"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "channel_id", Value: 1}},
			Options: options.Index().SetName("idx_campaigns_project_channel"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "type_id", Value: 1}},
			Options: options.Index().SetName("idx_campaigns_project_type"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_project_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	}
}
