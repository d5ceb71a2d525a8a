package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID uint64, limit, offset int64) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID uint64, id string) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection("notificaciones"),
	}
}

func (s *notificationRepoImpl) Create(ctx context.Context, n *Notification) error {
	_, err := s.col.InsertOne(ctx, n)
	return err
}

// List 分页获取通知，按时间倒序
func (s *notificationRepoImpl) List(ctx context.Context, userID uint64, limit, offset int64) ([]*Notification, error) {
	filter := bson.M{"receiver_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*Notification, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *notificationRepoImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"receiver_id": userID, "is_read": false})
}

// MarkRead 标记单条已读，过滤条件带上接收者防止越权
func (s *notificationRepoImpl) MarkRead(ctx context.Context, userID uint64, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": oid, "receiver_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *notificationRepoImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	filter := bson.M{"receiver_id": userID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}
	_, err := s.col.UpdateMany(ctx, filter, update)
	return err
}
