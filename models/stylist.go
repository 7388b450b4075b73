package models

import "time"

// GeoPoint is a plain latitude/longitude pair used by the distance math and the booking draft.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// GeoJSON represents a GeoJSON Point as stored in Mongo 2dsphere indexes.
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoJSON converts a GeoPoint into its GeoJSON form.
func NewGeoJSON(p GeoPoint) GeoJSON {
	return GeoJSON{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}}
}

// Point returns the GeoPoint for a GeoJSON value; ok is false when coordinates are missing.
func (g GeoJSON) Point() (GeoPoint, bool) {
	if len(g.Coordinates) < 2 {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: g.Coordinates[1], Lng: g.Coordinates[0]}, true
}

// AvailabilitySlot is one open slot advertised by a stylist.
type AvailabilitySlot struct {
	Date string `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time string `bson:"time" json:"time"` // "HH:MM"
}

// Stylist is the stored stylist document.
type Stylist struct {
	ID            string             `bson:"id" json:"id"`
	DisplayName   string             `bson:"displayName" json:"displayName"`
	Bio           string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Specialties   []string           `bson:"specialties" json:"specialties"`
	Categories    []string           `bson:"categories" json:"categories"`
	ServiceIDs    []string           `bson:"serviceIds" json:"serviceIds"`
	RatingAverage float64            `bson:"ratingAverage" json:"ratingAverage"`
	TotalReviews  int                `bson:"totalReviews" json:"totalReviews"`
	LocationGeo   GeoJSON            `bson:"locationGeo" json:"locationGeo"`
	Availability  []AvailabilitySlot `bson:"availability" json:"availability"`
	Status        string             `bson:"status" json:"status"`         // "active", "inactive"
	AutoAccept    bool               `bson:"autoAccept" json:"autoAccept"` // requests are confirmed without a manual step
	FCMToken      string             `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// CandidateStylist is the read view returned by a stylist search and scored by the ranker.
type CandidateStylist struct {
	ID            string             `json:"id"`
	DisplayName   string             `json:"displayName"`
	RatingAverage float64            `json:"ratingAverage"`
	TotalReviews  int                `json:"totalReviews"`
	DistanceMiles float64            `json:"distanceMiles"`
	Location      *GeoPoint          `json:"location,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	Specialties   []string           `json:"specialties"`
	Availability  []AvailabilitySlot `json:"availability"`
	Bio           string             `json:"bio,omitempty"`

	// Assigned by the ranker on every pass.
	FlexibilityScore float64 `json:"flexibilityScore"`
	DistanceScore    float64 `json:"distanceScore"`
	MatchScore       int     `json:"matchScore"`
	IsNew            bool    `json:"isNew"`
}

// ToCandidate builds the search read view of a stored stylist.
func (s Stylist) ToCandidate(distanceMiles float64) CandidateStylist {
	c := CandidateStylist{
		ID:            s.ID,
		DisplayName:   s.DisplayName,
		RatingAverage: s.RatingAverage,
		TotalReviews:  s.TotalReviews,
		DistanceMiles: distanceMiles,
		CreatedAt:     s.CreatedAt,
		Specialties:   s.Specialties,
		Availability:  s.Availability,
		Bio:           s.Bio,
	}
	if p, ok := s.LocationGeo.Point(); ok {
		c.Location = &p
	}
	return c
}

// StylistSearchParams carries the search collaborator's inputs.
type StylistSearchParams struct {
	Category         string   `json:"category"`
	ServiceID        string   `json:"serviceId"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	FlexibleTime     bool     `json:"flexibleTime"`
	Location         GeoPoint `json:"location"`
	MaxDistanceMiles float64  `json:"maxDistanceMiles"`
}
