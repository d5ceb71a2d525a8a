package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo interface {
	CreateProfile(ctx context.Context, profile *UserProfile) error
	GetByID(ctx context.Context, userID uint64) (*UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)

	AppendPostSummary(ctx context.Context, userID uint64, summary *PostSummary, anonymous bool) error
	RemovePostSummary(ctx context.Context, postID string) error
	SetPostSummaryDescription(ctx context.Context, postID string, description string) error

	AppendLikeSummary(ctx context.Context, userID uint64, summary *PostSummary) error
	RemoveLikeSummary(ctx context.Context, userID uint64, postID string) error

	PropagateCounters(ctx context.Context, postID string, likeCount, commentCount int) error

	AppendRequestSummary(ctx context.Context, userID uint64, sent bool, summary *RequestSummary) error
	SetRequestSummaryState(ctx context.Context, requestID string, state string, chatID uint64) error
	RemoveRequestSummary(ctx context.Context, requestID string) error
}

type userRepoImpl struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepoImpl{
		col: db.Collection("usuarios"),
	}
}

func (s *userRepoImpl) CreateProfile(ctx context.Context, profile *UserProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.Posts = make([]PostSummary, 0)
	profile.AnonymousPosts = make([]PostSummary, 0)
	profile.Likes = make([]PostSummary, 0)
	profile.SentRequests = make([]RequestSummary, 0)
	profile.ReceivedRequests = make([]RequestSummary, 0)

	_, err := s.col.InsertOne(ctx, profile)
	return err
}

func (s *userRepoImpl) GetByID(ctx context.Context, userID uint64) (*UserProfile, error) {
	var profile UserProfile
	if err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *userRepoImpl) GetByEmail(ctx context.Context, email string) (*UserProfile, error) {
	var profile UserProfile
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AppendPostSummary 向作者的帖子摘要数组追加一条投影
func (s *userRepoImpl) AppendPostSummary(ctx context.Context, userID uint64, summary *PostSummary, anonymous bool) error {
	field := "publicaciones"
	if anonymous {
		field = "publicacionesAnonimas"
	}

	update := bson.M{
		"$push": bson.M{field: summary},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

// RemovePostSummary 帖子删除后，从所有用户的全部摘要数组中拔除该帖子
func (s *userRepoImpl) RemovePostSummary(ctx context.Context, postID string) error {
	pull := bson.M{"post_id": postID}
	update := bson.M{"$pull": bson.M{
		"publicaciones":         pull,
		"publicacionesAnonimas": pull,
		"likes":                 pull,
	}}
	_, err := s.col.UpdateMany(ctx, bson.M{}, update)
	return err
}

// SetPostSummaryDescription 描述变更后同步所有摘要副本
// 三个数组分三次按内嵌 ID 定位更新，只改命中的数组元素
func (s *userRepoImpl) SetPostSummaryDescription(ctx context.Context, postID string, description string) error {
	for _, field := range []string{"publicaciones", "publicacionesAnonimas", "likes"} {
		filter := bson.M{field + ".post_id": postID}
		update := bson.M{"$set": bson.M{field + ".$.descripcion": description}}
		if _, err := s.col.UpdateMany(ctx, filter, update); err != nil {
			return err
		}
	}
	return nil
}

// AppendLikeSummary 向点赞者的 likes 摘要数组追加投影
func (s *userRepoImpl) AppendLikeSummary(ctx context.Context, userID uint64, summary *PostSummary) error {
	update := bson.M{
		"$push": bson.M{"likes": summary},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

func (s *userRepoImpl) RemoveLikeSummary(ctx context.Context, userID uint64, postID string) error {
	update := bson.M{"$pull": bson.M{"likes": bson.M{"post_id": postID}}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

// PropagateCounters 计数传播：把重算后的绝对值推进每一处引用该帖子的摘要
// 作者的帖子数组、匿名帖子数组、以及所有点过赞用户的 likes 数组
// 跨文档无事务，更新本身幂等，部分失败重放同一调用即可修复
func (s *userRepoImpl) PropagateCounters(ctx context.Context, postID string, likeCount, commentCount int) error {
	for _, field := range []string{"publicaciones", "publicacionesAnonimas", "likes"} {
		filter := bson.M{field + ".post_id": postID}
		update := bson.M{"$set": bson.M{
			field + ".$.cantLikes":       likeCount,
			field + ".$.cantComentarios": commentCount,
		}}
		if _, err := s.col.UpdateMany(ctx, filter, update); err != nil {
			return err
		}
	}
	return nil
}

// AppendRequestSummary 向用户的已发送/已接收请求数组追加摘要
func (s *userRepoImpl) AppendRequestSummary(ctx context.Context, userID uint64, sent bool, summary *RequestSummary) error {
	field := "solicitudesRecibidas"
	if sent {
		field = "solicitudesEnviadas"
	}

	update := bson.M{
		"$push": bson.M{field: summary},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

// SetRequestSummaryState 接受后把状态与会话 ID 写进双方的嵌入条目
func (s *userRepoImpl) SetRequestSummaryState(ctx context.Context, requestID string, state string, chatID uint64) error {
	for _, field := range []string{"solicitudesEnviadas", "solicitudesRecibidas"} {
		filter := bson.M{field + ".request_id": requestID}
		update := bson.M{"$set": bson.M{
			field + ".$.estado":      state,
			field + ".$.chatPrivado": chatID,
		}}
		if _, err := s.col.UpdateMany(ctx, filter, update); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRequestSummary 拒绝/撤回后从双方的嵌入数组中拔除该请求
func (s *userRepoImpl) RemoveRequestSummary(ctx context.Context, requestID string) error {
	pull := bson.M{"request_id": requestID}
	update := bson.M{"$pull": bson.M{
		"solicitudesEnviadas":  pull,
		"solicitudesRecibidas": pull,
	}}
	_, err := s.col.UpdateMany(ctx, bson.M{}, update)
	return err
}
