package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"socialexplore/internal/models"
	"socialexplore/pkg/location"
	"socialexplore/pkg/proximity"

	"gorm.io/gorm"
)

// DiscoveryFilters narrow the public activity search. Geo filtering applies
// only when Near is set.
type DiscoveryFilters struct {
	Near       *GeoPoint
	RadiusKm   float64
	Category   string
	StartAfter *time.Time
	Limit      int
	Offset     int
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

type DiscoveryResult struct {
	Activity   models.Activity `json:"activity"`
	DistanceKm *float64        `json:"distance_km,omitempty"`
	Proximity  proximity.Band  `json:"proximity,omitempty"`
}

// UserSearch narrows the nearby user search. Interests match when any of
// them is contained, case-insensitively, in one of the user's interests.
type UserSearch struct {
	Near      GeoPoint
	RadiusKm  float64
	Interests []string
	ExcludeID uint
	Limit     int
	Offset    int
}

type NearbyUser struct {
	User       models.User    `json:"user"`
	DistanceKm float64        `json:"distance_km"`
	Proximity  proximity.Band `json:"proximity"`
}

// DiscoveryRepository performs location-based discovery of activities and
// users. Distances use Haversine in the application layer after a bounding
// box pre-filter in SQL.
type DiscoveryRepository struct {
	db *gorm.DB
}

func NewDiscoveryRepository(db *gorm.DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// Discover returns public activities matching f. With a geo filter the
// results are ordered by distance; otherwise by start time.
func (r *DiscoveryRepository) Discover(ctx context.Context, f DiscoveryFilters) ([]DiscoveryResult, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("is_public = ?", true)
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.StartAfter != nil {
		query = query.Where("start_time >= ?", f.StartAfter.UTC())
	}

	if f.Near == nil {
		var list []models.Activity
		err := query.Order("start_time ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
		if err != nil {
			return nil, wrap("discover activities", err)
		}
		out := make([]DiscoveryResult, 0, len(list))
		for _, a := range list {
			out = append(out, DiscoveryResult{Activity: a})
		}
		return out, nil
	}

	box := location.BoundingBox(f.Near.Latitude, f.Near.Longitude, f.RadiusKm)
	var list []models.Activity
	err := query.
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", box.LatMin, box.LatMax, box.LngMin, box.LngMax).
		Find(&list).Error
	if err != nil {
		return nil, wrap("discover activities nearby", err)
	}

	out := make([]DiscoveryResult, 0, len(list))
	for _, a := range list {
		d := location.HaversineKm(f.Near.Latitude, f.Near.Longitude, a.Latitude, a.Longitude)
		if d > f.RadiusKm {
			continue
		}
		out = append(out, DiscoveryResult{
			Activity:   a,
			DistanceKm: &d,
			Proximity:  proximity.Classify(d, f.RadiusKm),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return page(out, f.Offset, f.Limit), nil
}

// NearbyUsers returns users whose home location lies within s.RadiusKm of
// s.Near, closest first.
func (r *DiscoveryRepository) NearbyUsers(ctx context.Context, s UserSearch) ([]NearbyUser, error) {
	if s.Limit <= 0 {
		s.Limit = 50
	}
	box := location.BoundingBox(s.Near.Latitude, s.Near.Longitude, s.RadiusKm)
	var list []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ? AND home_latitude IS NOT NULL AND home_longitude IS NOT NULL", s.ExcludeID).
		Where("home_latitude BETWEEN ? AND ? AND home_longitude BETWEEN ? AND ?", box.LatMin, box.LatMax, box.LngMin, box.LngMax).
		Find(&list).Error
	if err != nil {
		return nil, wrap("search nearby users", err)
	}

	wanted := normalizeInterests(s.Interests)
	out := make([]NearbyUser, 0, len(list))
	for _, u := range list {
		d := location.HaversineKm(s.Near.Latitude, s.Near.Longitude, *u.HomeLatitude, *u.HomeLongitude)
		if d > s.RadiusKm || !sharesInterest(u.Interests, wanted) {
			continue
		}
		out = append(out, NearbyUser{User: u, DistanceKm: d, Proximity: proximity.Classify(d, s.RadiusKm)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return page(out, s.Offset, s.Limit), nil
}

func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sharesInterest reports whether any wanted term appears in one of have.
// An empty wanted list matches everyone.
func sharesInterest(have, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, h := range have {
		h = strings.ToLower(h)
		for _, w := range wanted {
			if strings.Contains(h, w) {
				return true
			}
		}
	}
	return false
}

func page[T any](s []T, offset, limit int) []T {
	if offset >= len(s) {
		return []T{}
	}
	s = s[offset:]
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
