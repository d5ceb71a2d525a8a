package service

import (
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/consts"
	"Lazo/internal/pkg/events"
	mongorepo "Lazo/internal/pkg/mongo"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DirtyMarker 脏集合写入端
type DirtyMarker interface {
	Mark(ctx context.Context, id string)
}

type PostActionService interface {
	LikePost(ctx context.Context, userID uint64, postID string) error
	UnlikePost(ctx context.Context, userID uint64, postID string) error

	AddComment(ctx context.Context, userID uint64, postID string, text string) (*mongorepo.Comment, error)
	UpdateComment(ctx context.Context, userID uint64, postID string, commentID string, text string) error
	DeleteComment(ctx context.Context, userID uint64, postID string, commentID string) error

	RepairPost(ctx context.Context, postID string) error
}

type postActionServiceImpl struct {
	postRepo    mongorepo.PostRepo
	profileRepo mongorepo.UserRepo
	seq         *cache.Sequencer
	dirty       DirtyMarker
	bus         events.Emitter
}

func NewPostActionService(
	postRepo mongorepo.PostRepo,
	profileRepo mongorepo.UserRepo,
	seq *cache.Sequencer,
	dirty DirtyMarker,
	bus events.Emitter,
) PostActionService {
	return &postActionServiceImpl{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		seq:         seq,
		dirty:       dirty,
		bus:         bus,
	}
}

// LikePost 点赞：单次原子文档操作提交动作，
// 提交后从保存结果重算绝对计数并向全部投影传播
func (s *postActionServiceImpl) LikePost(ctx context.Context, userID uint64, postID string) error {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	post, err := s.postRepo.AddLiker(ctx, postID, userID)
	if err != nil {
		return s.resolveNotModified(ctx, postID, err)
	}

	// 动作已提交，之后的传播失败不回滚，由修复周期收敛
	s.dirty.Mark(ctx, postID)

	if err := s.profileRepo.AppendLikeSummary(ctx, userID, postSummaryOf(post)); err != nil {
		log.ErrorContext(ctx, "append like summary failed", "post_id", postID, "user_id", userID, "err", err)
	}
	s.syncAndPropagate(ctx, post)
	s.refreshAfterAction(ctx, post, userID)

	s.bus.Emit(ctx, events.PostLiked{
		Post:  snapshotOf(post),
		Actor: actorOf(profile),
	})
	return nil
}

// UnlikePost 取消点赞，镜像流程，不产生事件
func (s *postActionServiceImpl) UnlikePost(ctx context.Context, userID uint64, postID string) error {
	post, err := s.postRepo.RemoveLiker(ctx, postID, userID)
	if err != nil {
		return s.resolveNotModified(ctx, postID, err)
	}

	s.dirty.Mark(ctx, postID)

	if err := s.profileRepo.RemoveLikeSummary(ctx, userID, postID); err != nil {
		log.ErrorContext(ctx, "remove like summary failed", "post_id", postID, "user_id", userID, "err", err)
	}
	s.syncAndPropagate(ctx, post)
	s.refreshAfterAction(ctx, post, userID)
	return nil
}

// AddComment 追加内嵌评论并重算传播计数
func (s *postActionServiceImpl) AddComment(ctx context.Context, userID uint64, postID string, text string) (*mongorepo.Comment, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	comment := &mongorepo.Comment{
		ID:        primitive.NewObjectID(),
		Author:    profile.Summary(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	post, err := s.postRepo.PushComment(ctx, postID, comment)
	if err != nil {
		if errors.Is(err, mongorepo.ErrNotModified) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	s.dirty.Mark(ctx, postID)
	s.syncAndPropagate(ctx, post)
	s.refreshAfterAction(ctx, post, userID)

	s.bus.Emit(ctx, events.PostCommented{
		Post:        snapshotOf(post),
		Actor:       actorOf(profile),
		CommentText: text,
	})
	return comment, nil
}

// UpdateComment 原地改写评论内容，计数不变，只刷新缓存
func (s *postActionServiceImpl) UpdateComment(ctx context.Context, userID uint64, postID string, commentID string, text string) error {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return ErrPostCommentNotFound
	}

	post, err := s.postRepo.SetCommentText(ctx, postID, oid, userID, text)
	if err != nil {
		if errors.Is(err, mongorepo.ErrNotModified) {
			return s.resolveCommentMiss(ctx, postID, oid, userID)
		}
		return err
	}

	s.refreshAfterAction(ctx, post, userID)
	return nil
}

// DeleteComment 评论作者或帖子作者可删除
func (s *postActionServiceImpl) DeleteComment(ctx context.Context, userID uint64, postID string, commentID string) error {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return ErrPostCommentNotFound
	}

	current, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}

	var target *mongorepo.Comment
	for i := range current.Comments {
		if current.Comments[i].ID == oid {
			target = &current.Comments[i]
			break
		}
	}
	if target == nil {
		return ErrPostCommentNotFound
	}
	if target.Author.UserID != userID && current.OwnerID != userID {
		return UnauthorizedError
	}

	post, err := s.postRepo.PullComment(ctx, postID, oid)
	if err != nil {
		if errors.Is(err, mongorepo.ErrNotModified) {
			return ErrPostCommentNotFound
		}
		return err
	}

	s.dirty.Mark(ctx, postID)
	s.syncAndPropagate(ctx, post)
	s.refreshAfterAction(ctx, post, userID)
	return nil
}

// RepairPost 修复周期：从正本权威数组重算绝对计数，
// 写回正本、传播到全部投影、再失效回填缓存
// 全程幂等，可对任意帖子任意次数执行
func (s *postActionServiceImpl) RepairPost(ctx context.Context, postID string) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// 帖子已删除：拔除残留投影并清掉缓存键
			if err := s.profileRepo.RemovePostSummary(ctx, postID); err != nil {
				return err
			}
			s.seq.Gateway().Del(ctx, consts.PostKey+postID, consts.PostAllKey)
			return nil
		}
		return err
	}

	likeCount := len(post.Likers)
	commentCount := len(post.Comments)
	if err := s.postRepo.SyncCounters(ctx, postID, likeCount, commentCount); err != nil {
		return err
	}
	if err := s.profileRepo.PropagateCounters(ctx, postID, likeCount, commentCount); err != nil {
		return err
	}

	s.refreshAfterAction(ctx, post, post.OwnerID)
	return nil
}

// resolveNotModified 区分未命中的两种语义：帖子不存在或动作重复
// 回读时的存储层故障原样上抛，不伪装成 NotFound
func (s *postActionServiceImpl) resolveNotModified(ctx context.Context, postID string, err error) error {
	if !errors.Is(err, mongorepo.ErrNotModified) {
		return err
	}
	if _, gErr := s.postRepo.GetPost(ctx, postID); gErr != nil {
		if errors.Is(gErr, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return gErr
	}
	return ErrActionDuplicate
}

// resolveCommentMiss 区分评论定位失败的三种语义
func (s *postActionServiceImpl) resolveCommentMiss(ctx context.Context, postID string, commentID primitive.ObjectID, userID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return ErrPostNotFound
	}
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			if post.Comments[i].Author.UserID != userID {
				return UnauthorizedError
			}
			return UnExpectedError
		}
	}
	return ErrPostCommentNotFound
}

// syncAndPropagate 计数同步：正本绝对值写回 + 投影传播
// 失败只记日志，脏集合里的标记会让修复周期重放整个序列
func (s *postActionServiceImpl) syncAndPropagate(ctx context.Context, post *mongorepo.Post) {
	postID := post.ID.Hex()
	likeCount := len(post.Likers)
	commentCount := len(post.Comments)

	if err := s.postRepo.SyncCounters(ctx, postID, likeCount, commentCount); err != nil {
		log.ErrorContext(ctx, "sync counters failed", "post_id", postID, "err", err)
		return
	}
	if err := s.profileRepo.PropagateCounters(ctx, postID, likeCount, commentCount); err != nil {
		log.ErrorContext(ctx, "propagate counters failed", "post_id", postID, "err", err)
	}
}

// refreshAfterAction 动作提交后的失效-回填序列
// 帖子正本、全量聚合与动作者的档案、摘要同步重算；作者档案只失效
func (s *postActionServiceImpl) refreshAfterAction(ctx context.Context, post *mongorepo.Post, actorID uint64) {
	postID := post.ID.Hex()
	postKey := consts.PostKey + postID
	actorProfileKey := consts.ProfileKey + strconv.FormatUint(actorID, 10)
	actorUserKey := consts.UserKey + strconv.FormatUint(actorID, 10)

	keys := []string{
		postKey,
		consts.PostAllKey,
		actorProfileKey,
		actorUserKey,
		consts.ProfileKey + strconv.FormatUint(post.OwnerID, 10),
	}
	s.seq.InvalidateAndRefresh(ctx, keys, map[string]cache.Refresh{
		postKey: s.seq.Profile(func(ctx context.Context) (any, error) {
			return s.postRepo.GetPost(ctx, postID)
		}),
		consts.PostAllKey: s.seq.Aggregate(func(ctx context.Context) (any, error) {
			return s.postRepo.GetAllPosts(ctx)
		}),
		actorProfileKey: s.seq.Profile(func(ctx context.Context) (any, error) {
			return s.profileRepo.GetByID(ctx, actorID)
		}),
		actorUserKey: s.seq.Profile(func(ctx context.Context) (any, error) {
			profile, err := s.profileRepo.GetByID(ctx, actorID)
			if err != nil {
				return nil, err
			}
			return profile.Summary(), nil
		}),
	})
}

func snapshotOf(post *mongorepo.Post) events.PostSnapshot {
	return events.PostSnapshot{
		PostID:       post.ID.Hex(),
		OwnerID:      post.OwnerID,
		Description:  post.Description,
		LikeCount:    len(post.Likers),
		CommentCount: len(post.Comments),
		CreatedAt:    post.CreatedAt,
	}
}

func actorOf(profile *mongorepo.UserProfile) events.Actor {
	return events.Actor{
		UserID:    profile.UserID,
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
	}
}
