package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotModified 表示条件更新没有命中任何文档
// 区分“帖子不存在”与“重复动作”由上层结合 GetPost 判断
var ErrNotModified = errors.New("document not modified")

type PostRepo interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	GetAllPosts(ctx context.Context) ([]*Post, error)
	GetPostsByOwner(ctx context.Context, ownerID uint64, anonymous bool) ([]*Post, error)
	UpdateDescription(ctx context.Context, id string, description string) error
	DeletePost(ctx context.Context, id string) error

	AddLiker(ctx context.Context, id string, userID uint64) (*Post, error)
	RemoveLiker(ctx context.Context, id string, userID uint64) (*Post, error)

	PushComment(ctx context.Context, id string, comment *Comment) (*Post, error)
	SetCommentText(ctx context.Context, id string, commentID primitive.ObjectID, authorID uint64, text string) (*Post, error)
	PullComment(ctx context.Context, id string, commentID primitive.ObjectID) (*Post, error)

	SyncCounters(ctx context.Context, id string, likeCount, commentCount int) error
}

type postRepoImpl struct {
	col *mongo.Collection
}

func NewPostRepo(db *mongo.Database) PostRepo {
	return &postRepoImpl{
		col: db.Collection("publicaciones"),
	}
}

func (s *postRepoImpl) CreatePost(ctx context.Context, post *Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Comments == nil {
		post.Comments = make([]Comment, 0)
	}
	if post.Likers == nil {
		post.Likers = make([]uint64, 0)
	}

	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

func (s *postRepoImpl) GetPost(ctx context.Context, id string) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var post Post
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetAllPosts 按创建时间倒序返回全量帖子
func (s *postRepoImpl) GetAllPosts(ctx context.Context) ([]*Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	posts := make([]*Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postRepoImpl) GetPostsByOwner(ctx context.Context, ownerID uint64, anonymous bool) ([]*Post, error) {
	filter := bson.M{"owner_id": ownerID, "anonimo": anonymous}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	posts := make([]*Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postRepoImpl) UpdateDescription(ctx context.Context, id string, description string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{"$set": bson.M{"descripcion": description, "updated_at": time.Now()}}
	res, err := s.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *postRepoImpl) DeletePost(ctx context.Context, id string) error {
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

// AddLiker 单次原子文档操作追加点赞者并返回更新后的文档
// 过滤条件排除已点赞用户，未命中返回 ErrNotModified
func (s *postRepoImpl) AddLiker(ctx context.Context, id string, userID uint64) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": oid, "likers": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"likers": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

// RemoveLiker 单次原子文档操作移除点赞者并返回更新后的文档
func (s *postRepoImpl) RemoveLiker(ctx context.Context, id string, userID uint64) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": oid, "likers": userID}
	update := bson.M{
		"$pull": bson.M{"likers": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

// PushComment 追加内嵌评论并返回更新后的文档
func (s *postRepoImpl) PushComment(ctx context.Context, id string, comment *Comment) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": oid}
	update := bson.M{
		"$push": bson.M{"comentarios": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

// SetCommentText 定位匹配的数组元素原地改写评论内容
// 过滤条件同时校验评论作者，越权修改不会命中
func (s *postRepoImpl) SetCommentText(ctx context.Context, id string, commentID primitive.ObjectID, authorID uint64, text string) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{
		"_id": oid,
		"comentarios": bson.M{"$elemMatch": bson.M{
			"_id":           commentID,
			"autor.user_id": authorID,
		}},
	}
	update := bson.M{"$set": bson.M{
		"comentarios.$.texto":      text,
		"comentarios.$.updated_at": time.Now(),
		"updated_at":               time.Now(),
	}}
	return s.findOneAndUpdate(ctx, filter, update)
}

// PullComment 按评论 ID 移除内嵌评论并返回更新后的文档
func (s *postRepoImpl) PullComment(ctx context.Context, id string, commentID primitive.ObjectID) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	filter := bson.M{"_id": oid, "comentarios._id": commentID}
	update := bson.M{
		"$pull": bson.M{"comentarios": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, filter, update)
}

// SyncCounters 将重算后的绝对计数写回正本，幂等可重试
// 零计数同样写入：没有点赞是合法的零值状态，不等于帖子不存在
func (s *postRepoImpl) SyncCounters(ctx context.Context, id string, likeCount, commentCount int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{"$set": bson.M{
		"cantLikes":       likeCount,
		"cantComentarios": commentCount,
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

func (s *postRepoImpl) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post Post
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotModified
		}
		return nil, err
	}
	return &post, nil
}
