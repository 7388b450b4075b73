package chatRepo

import (
	"context"
	"fmt"
	"time"

	"beautycita/database"
	"beautycita/models"
	"beautycita/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoChatRepo implements ChatRepository using MongoDB.
type MongoChatRepo struct {
	coll *mongo.Collection
}

func NewMongoChatRepo() ChatRepository {
	repo := &MongoChatRepo{coll: database.DB().Collection("chat_messages")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "appointmentId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		utils.GetLogger().Warn("Chat indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoChatRepo) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) ListMessages(ctx context.Context, appointmentID string, limit int64) ([]models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"appointmentId": appointmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer cursor.Close(ctx)
	out := []models.ChatMessage{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}
	return out, nil
}
