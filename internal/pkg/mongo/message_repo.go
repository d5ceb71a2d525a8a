package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *ChatMessage) error
	GetHistory(ctx context.Context, convID uint64, lastSeq uint64, pageSize int) ([]*ChatMessage, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("mensajes"),
	}
}

func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *ChatMessage) error {
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetHistory 游标式历史拉取
// lastSeq 为当前页面最旧一条消息的序号，第一页传 0
func (s *messageRepoImpl) GetHistory(ctx context.Context, convID uint64, lastSeq uint64, pageSize int) ([]*ChatMessage, error) {
	filter := bson.M{"conversation_id": convID}
	if lastSeq > 0 {
		filter["seq"] = bson.M{"$lt": lastSeq}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetLimit(int64(pageSize))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*ChatMessage, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
