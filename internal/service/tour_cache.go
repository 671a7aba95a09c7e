package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/iliyamo/tour-booking/internal/cache"
)

// Cache keys and tags of the tour listings.  Every entry carries TagTours
// so a single flush clears all of them.
const (
	KeyToursAll       = "tours:all"
	KeyToursFeatured  = "tours:featured"
	KeyToursAvailable = "tours:available"
	keyTourDetail     = "tours:detail:"
	keyTourSearch     = "tours:search:"

	TagTours     = "tours"
	TagFeatured  = "featured"
	TagAvailable = "available"
	TagSearch    = "search"
	tagTour      = "tour:"
)

func tourDetailKey(id uint64) string { return keyTourDetail + strconv.FormatUint(id, 10) }
func tourTag(id uint64) string       { return tagTour + strconv.FormatUint(id, 10) }

func tourSearchKey(keyword string) string {
	return keyTourSearch + strings.ToLower(strings.TrimSpace(keyword))
}

// TourCacheInvalidator drops cached tour listings after tour writes.
type TourCacheInvalidator struct {
	Cache *cache.TagCache
}

func NewTourCacheInvalidator(c *cache.TagCache) *TourCacheInvalidator {
	return &TourCacheInvalidator{Cache: c}
}

// TourChanged flushes the tags a write can make stale.
func (i *TourCacheInvalidator) TourChanged(ctx context.Context, ev TourEvent) {
	i.Cache.Flush(ctx, InvalidationTags(ev)...)
}

// InvalidationTags returns the tags to flush for ev.
//
//	create, delete     → tours
//	update             → tour:<id>, search, plus featured and available when
//	                     availability changed, plus featured when the
//	                     featured flag changed
//	inventory changed  → tour:<id>
func InvalidationTags(ev TourEvent) []string {
	switch ev.Kind {
	case TourCreated, TourDeleted:
		return []string{TagTours}
	case TourUpdated:
		if ev.Before == nil || ev.After == nil {
			return []string{TagTours}
		}
		tags := []string{tourTag(ev.TourID), TagSearch}
		if ev.Before.Availability != ev.After.Availability {
			return append(tags, TagFeatured, TagAvailable)
		}
		if ev.Before.Featured != ev.After.Featured {
			tags = append(tags, TagFeatured)
		}
		return tags
	case TourInventoryChanged:
		return []string{tourTag(ev.TourID)}
	}
	return nil
}
