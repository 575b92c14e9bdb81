package statsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the dashboard home.
type Counts struct {
	News              int64 `json:"news"`
	Dakwah            int64 `json:"dakwah"`
	DakwahPublished   int64 `json:"dakwah_published"`
	DakwahHighlighted int64 `json:"dakwah_highlighted"`
	Sliders           int64 `json:"sliders"`
	SlidersVisible    int64 `json:"sliders_visible"`
	Proposals         int64 `json:"proposals"`
	ProposalsUnread   int64 `json:"proposals_unread"`
	GalleryImages     int64 `json:"gallery_images"`
}

// FetchDashboardCounts returns the dashboard totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count("news", bson.M{}, &out.News)
	count("daily_dakwah", bson.M{}, &out.Dakwah)
	count("daily_dakwah", bson.M{"published": true}, &out.DakwahPublished)
	count("daily_dakwah", bson.M{"highlight": true}, &out.DakwahHighlighted)
	count("home_sliders", bson.M{}, &out.Sliders)
	count("home_sliders", bson.M{"visible": true}, &out.SlidersVisible)
	count("proposals", bson.M{}, &out.Proposals)
	count("proposals", bson.M{"is_read": false}, &out.ProposalsUnread)
	count("gallery_images", bson.M{}, &out.GalleryImages)

	return out
}
