package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FriendRequestRepo interface {
	Create(ctx context.Context, req *FriendRequest) error
	GetByID(ctx context.Context, id string) (*FriendRequest, error)
	FindPendingByPair(ctx context.Context, pairKey string) (*FriendRequest, error)
	ListBySender(ctx context.Context, userID uint64, state string) ([]*FriendRequest, error)
	ListByReceiver(ctx context.Context, userID uint64, state string) ([]*FriendRequest, error)
	ListAccepted(ctx context.Context, userID uint64) ([]*FriendRequest, error)
	SetAccepted(ctx context.Context, id string, chatID uint64) error
	Delete(ctx context.Context, id string) error
}

type friendRequestRepoImpl struct {
	col *mongo.Collection
}

func NewFriendRequestRepo(db *mongo.Database) FriendRequestRepo {
	return &friendRequestRepoImpl{
		col: db.Collection("solicitudes"),
	}
}

func (s *friendRequestRepoImpl) Create(ctx context.Context, req *FriendRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

func (s *friendRequestRepoImpl) GetByID(ctx context.Context, id string) (*FriendRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var req FriendRequest
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingByPair 按规范化的无序对键查找挂起请求，双向只有一个键
func (s *friendRequestRepoImpl) FindPendingByPair(ctx context.Context, pairKey string) (*FriendRequest, error) {
	var req FriendRequest
	filter := bson.M{"parClave": pairKey, "estado": RequestPending}
	if err := s.col.FindOne(ctx, filter).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *friendRequestRepoImpl) ListBySender(ctx context.Context, userID uint64, state string) ([]*FriendRequest, error) {
	return s.list(ctx, bson.M{"emisor.user_id": userID, "estado": state})
}

func (s *friendRequestRepoImpl) ListByReceiver(ctx context.Context, userID uint64, state string) ([]*FriendRequest, error) {
	return s.list(ctx, bson.M{"receptor.user_id": userID, "estado": state})
}

// ListAccepted 已接受的请求即好友关系，用户可能在任意一侧
func (s *friendRequestRepoImpl) ListAccepted(ctx context.Context, userID uint64) ([]*FriendRequest, error) {
	filter := bson.M{
		"estado": RequestAccepted,
		"$or": bson.A{
			bson.M{"emisor.user_id": userID},
			bson.M{"receptor.user_id": userID},
		},
	}
	return s.list(ctx, filter)
}

// SetAccepted 状态转移与会话回填在一次文档更新内完成
func (s *friendRequestRepoImpl) SetAccepted(ctx context.Context, id string, chatID uint64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{"$set": bson.M{
		"estado":      RequestAccepted,
		"chatPrivado": chatID,
		"updated_at":  time.Now(),
	}}
	res, err := s.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *friendRequestRepoImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *friendRequestRepoImpl) list(ctx context.Context, filter bson.M) ([]*FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	reqs := make([]*FriendRequest, 0)
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
