package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCacheKeyStableAcrossCriteriaOrder(t *testing.T) {
	a := bson.M{"chat_id": "c1", "is_deleted": false}
	b := bson.M{"is_deleted": false, "chat_id": "c1"}
	if cacheKey("messages", a, FindOptions{}) != cacheKey("messages", b, FindOptions{}) {
		t.Fatal("equivalent criteria maps should produce the same cache key")
	}
}

func TestCacheKeyVariesByInputs(t *testing.T) {
	base := cacheKey("messages", bson.M{"chat_id": "c1"}, FindOptions{})

	if got := cacheKey("chats", bson.M{"chat_id": "c1"}, FindOptions{}); got == base {
		t.Fatal("different models should produce different cache keys")
	}
	if got := cacheKey("messages", bson.M{"chat_id": "c2"}, FindOptions{}); got == base {
		t.Fatal("different criteria should produce different cache keys")
	}
	if got := cacheKey("messages", bson.M{"chat_id": "c1"}, FindOptions{Limit: 5}); got == base {
		t.Fatal("different find options should produce different cache keys")
	}
}
