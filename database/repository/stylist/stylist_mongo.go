package stylistRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautycita/database"
	"beautycita/models"
	"beautycita/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	metersPerMile    = 1609.344
	searchLimit      = 50
	defaultMaxMiles  = 25.0
	collectionName   = "stylists"
	statusActive     = "active"
	distanceFieldKey = "distanceMeters"
)

var ErrStylistNotFound = errors.New("stylist not found")

// MongoStylistRepo implements StylistRepository using MongoDB.
type MongoStylistRepo struct {
	coll *mongo.Collection
}

// NewMongoStylistRepo uses the application database's "stylists" collection.
func NewMongoStylistRepo() StylistRepository {
	repo := &MongoStylistRepo{coll: database.DB().Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("Stylist indexes not created", zap.Error(err))
	}
	return repo
}

// NewStylistRepoWithCollection wraps an existing collection.
func NewStylistRepoWithCollection(coll *mongo.Collection) *MongoStylistRepo {
	return &MongoStylistRepo{coll: coll}
}

func (r *MongoStylistRepo) GetByID(ctx context.Context, id string) (*models.Stylist, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var s models.Stylist
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStylistNotFound
		}
		return nil, fmt.Errorf("failed to fetch stylist with id %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoStylistRepo) Create(ctx context.Context, s *models.Stylist) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create stylist: %w", err)
	}
	return nil
}

// stylistWithDistance is a stylist document decorated by $geoNear.
type stylistWithDistance struct {
	models.Stylist `bson:",inline"`
	DistanceMeters float64 `bson:"distanceMeters"`
}

func (r *MongoStylistRepo) SearchStylists(ctx context.Context, params models.StylistSearchParams) ([]models.CandidateStylist, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	maxMiles := params.MaxDistanceMiles
	if maxMiles <= 0 {
		maxMiles = defaultMaxMiles
	}

	query := bson.M{"status": statusActive}
	if params.ServiceID != "" {
		query["serviceIds"] = params.ServiceID
	} else if params.Category != "" {
		query["categories"] = params.Category
	}

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":          bson.M{"type": "Point", "coordinates": []float64{params.Location.Lng, params.Location.Lat}},
			"distanceField": distanceFieldKey,
			"maxDistance":   maxMiles * metersPerMile,
			"spherical":     true,
			"query":         query,
		}}},
		{{Key: "$limit", Value: int64(searchLimit)}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("stylist search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []stylistWithDistance
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode stylists: %w", err)
	}

	out := make([]models.CandidateStylist, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Stylist.ToCandidate(d.DistanceMeters/metersPerMile))
	}
	return out, nil
}
