// Package profile resolves opaque participant ids to display profiles.
package profile

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
	"github.com/shiva-garg-77/Swaggo-sub013/internal/store"
)

const profileModel = "profiles"

// Directory is the id→profile lookup the chat layer consumes. Unknown ids
// are simply absent from the result map.
type Directory interface {
	Resolve(ctx context.Context, profileIDs []string) (map[string]models.Profile, error)
}

// StoreDirectory resolves profiles from the profiles collection with a
// single $in query per call.
type StoreDirectory struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewStoreDirectory(s store.Store, log *zap.SugaredLogger) *StoreDirectory {
	return &StoreDirectory{store: s, log: log}
}

func (d *StoreDirectory) Resolve(ctx context.Context, profileIDs []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	criteria := bson.M{"_id": bson.M{"$in": dedupe(profileIDs)}}
	if err := d.store.Find(ctx, profileModel, criteria, store.FindOptions{}, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
