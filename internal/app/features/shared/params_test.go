package shared

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectIDParam(t *testing.T) {
	id := primitive.NewObjectID()
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", id.Hex())
	if got, ok := ObjectIDParam(req, "id"); !ok || got != id {
		t.Errorf("ObjectIDParam = %v, %v", got, ok)
	}
	bad := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "nope")
	if _, ok := ObjectIDParam(bad, "id"); ok {
		t.Error("expected ok=false for malformed id")
	}
}

func TestYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		query string
		want  int
	}{
		{"", 2026},
		{"?year=2024", 2024},
		{"?year=abc", 2026},
		{"?year=12", 2026},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Year(httptest.NewRequest("GET", "/"+tt.query, nil), now); got != tt.want {
				t.Errorf("Year = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInt64(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&offset=-3&bad=x", nil)
	if got := Int64(req, "limit", 50, 1, 200); got != 200 {
		t.Errorf("limit = %d", got)
	}
	if got := Int64(req, "offset", 0, 0, 1<<30); got != 0 {
		t.Errorf("offset = %d", got)
	}
	if got := Int64(req, "bad", 7, 0, 10); got != 7 {
		t.Errorf("bad = %d", got)
	}
}
