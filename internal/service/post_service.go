package service

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/consts"
	mongorepo "Lazo/internal/pkg/mongo"
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, createDTO *dto.CreatePostDTO) (*mongorepo.Post, error)
	GetPost(ctx context.Context, postID string) (*mongorepo.Post, error)
	GetFeed(ctx context.Context) ([]*mongorepo.Post, error)
	GetPostsByOwner(ctx context.Context, ownerID uint64, anonymous bool) ([]*mongorepo.Post, error)
	UpdateDescription(ctx context.Context, userID uint64, postID string, description string) error
	DeletePost(ctx context.Context, userID uint64, postID string) error
}

type postServiceImpl struct {
	postRepo    mongorepo.PostRepo
	profileRepo mongorepo.UserRepo
	seq         *cache.Sequencer
}

func NewPostService(
	postRepo mongorepo.PostRepo,
	profileRepo mongorepo.UserRepo,
	seq *cache.Sequencer,
) PostService {
	return &postServiceImpl{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		seq:         seq,
	}
}

// CreatePost 正本入库后追加作者档案的摘要投影，再失效并回填受影响的键
func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, createDTO *dto.CreatePostDTO) (*mongorepo.Post, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	post := &mongorepo.Post{
		Description: createDTO.Description,
		Images:      createDTO.Images,
		Anonymous:   createDTO.Anonymous,
		OwnerID:     userID,
		Owner:       profile.Summary(),
	}
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	if err := s.profileRepo.AppendPostSummary(ctx, userID, postSummaryOf(post), post.Anonymous); err != nil {
		return nil, err
	}

	s.refreshPostKeys(ctx, post.ID.Hex(), userID)
	return post, nil
}

// GetPost 旁路缓存读取帖子正本
func (s *postServiceImpl) GetPost(ctx context.Context, postID string) (*mongorepo.Post, error) {
	key := consts.PostKey + postID

	var post mongorepo.Post
	err := s.seq.Gateway().GetOrCompute(ctx, key, s.seq.ProfileTTL(), &post, func() error {
		found, err := s.postRepo.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		post = *found
		return nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetFeed 全量帖子聚合，重建成本高，走长 TTL 聚合缓存
func (s *postServiceImpl) GetFeed(ctx context.Context) ([]*mongorepo.Post, error) {
	posts := make([]*mongorepo.Post, 0)
	err := s.seq.Gateway().GetOrCompute(ctx, consts.PostAllKey, s.seq.AggregateTTL(), &posts, func() error {
		found, err := s.postRepo.GetAllPosts(ctx)
		if err != nil {
			return err
		}
		posts = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postServiceImpl) GetPostsByOwner(ctx context.Context, ownerID uint64, anonymous bool) ([]*mongorepo.Post, error) {
	return s.postRepo.GetPostsByOwner(ctx, ownerID, anonymous)
}

// UpdateDescription 正本更新后同步所有摘要副本，再失效并回填
func (s *postServiceImpl) UpdateDescription(ctx context.Context, userID uint64, postID string, description string) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}
	if post.OwnerID != userID {
		return UnauthorizedError
	}

	if err := s.postRepo.UpdateDescription(ctx, postID, description); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}
	if err := s.profileRepo.SetPostSummaryDescription(ctx, postID, description); err != nil {
		return err
	}

	s.refreshPostKeys(ctx, postID, post.OwnerID)
	return nil
}

// DeletePost 删除正本后从所有档案的摘要数组中拔除投影
func (s *postServiceImpl) DeletePost(ctx context.Context, userID uint64, postID string) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}
	if post.OwnerID != userID {
		return UnauthorizedError
	}

	if err := s.postRepo.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}
	if err := s.profileRepo.RemovePostSummary(ctx, postID); err != nil {
		return err
	}

	keys := []string{
		consts.PostKey + postID,
		consts.PostAllKey,
		consts.ProfileKey + strconv.FormatUint(post.OwnerID, 10),
	}
	s.seq.InvalidateAndRefresh(ctx, keys, map[string]cache.Refresh{
		consts.PostAllKey: s.seq.Aggregate(func(ctx context.Context) (any, error) {
			return s.postRepo.GetAllPosts(ctx)
		}),
	})
	return nil
}

// refreshPostKeys 帖子变更后的失效-回填序列：
// 帖子正本与全量聚合同步重算，作者档案只失效等下次读取
func (s *postServiceImpl) refreshPostKeys(ctx context.Context, postID string, ownerID uint64) {
	postKey := consts.PostKey + postID
	keys := []string{
		postKey,
		consts.PostAllKey,
		consts.ProfileKey + strconv.FormatUint(ownerID, 10),
	}
	s.seq.InvalidateAndRefresh(ctx, keys, map[string]cache.Refresh{
		postKey: s.seq.Profile(func(ctx context.Context) (any, error) {
			return s.postRepo.GetPost(ctx, postID)
		}),
		consts.PostAllKey: s.seq.Aggregate(func(ctx context.Context) (any, error) {
			return s.postRepo.GetAllPosts(ctx)
		}),
	})
}

// postSummaryOf 从正本裁出嵌入档案用的摘要，计数来自权威数组长度
func postSummaryOf(post *mongorepo.Post) *mongorepo.PostSummary {
	image := ""
	if len(post.Images) > 0 {
		image = post.Images[0]
	}
	return &mongorepo.PostSummary{
		PostID:       post.ID.Hex(),
		Description:  post.Description,
		Image:        image,
		LikeCount:    len(post.Likers),
		CommentCount: len(post.Comments),
		CreatedAt:    post.CreatedAt,
	}
}
