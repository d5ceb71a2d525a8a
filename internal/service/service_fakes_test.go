package service

import (
	"Lazo/internal/model"
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/events"
	mongorepo "Lazo/internal/pkg/mongo"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ---- 缓存 ----

type fakeCacheStore struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: make(map[string]string)}
}

func (s *fakeCacheStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return "", errStoreDown
	}
	v, ok := s.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (s *fakeCacheStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errStoreDown
	}
	s.data[key] = value
	return nil
}

func (s *fakeCacheStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errStoreDown
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *fakeCacheStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

var errStoreDown = errors.New("store down")

func newTestSequencer(store cache.Store) *cache.Sequencer {
	return cache.NewSequencer(cache.NewGateway(store), time.Minute, time.Hour)
}

// ---- 帖子正本 ----

type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[string]*mongorepo.Post
	getErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*mongorepo.Post)}
}

func (s *fakePostRepo) clone(p *mongorepo.Post) *mongorepo.Post {
	cp := *p
	cp.Likers = append([]uint64(nil), p.Likers...)
	cp.Comments = append([]mongorepo.Comment(nil), p.Comments...)
	return &cp
}

func (s *fakePostRepo) CreatePost(_ context.Context, post *mongorepo.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likers == nil {
		post.Likers = make([]uint64, 0)
	}
	if post.Comments == nil {
		post.Comments = make([]mongorepo.Comment, 0)
	}
	s.posts[post.ID.Hex()] = s.clone(post)
	return nil
}

func (s *fakePostRepo) GetPost(_ context.Context, id string) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return s.clone(p), nil
}

func (s *fakePostRepo) GetAllPosts(_ context.Context) ([]*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, s.clone(p))
	}
	return out, nil
}

func (s *fakePostRepo) GetPostsByOwner(_ context.Context, ownerID uint64, anonymous bool) ([]*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.Post, 0)
	for _, p := range s.posts {
		if p.OwnerID == ownerID && p.Anonymous == anonymous {
			out = append(out, s.clone(p))
		}
	}
	return out, nil
}

func (s *fakePostRepo) UpdateDescription(_ context.Context, id string, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Description = description
	return nil
}

func (s *fakePostRepo) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePostRepo) AddLiker(_ context.Context, id string, userID uint64) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, mongorepo.ErrNotModified
	}
	for _, l := range p.Likers {
		if l == userID {
			return nil, mongorepo.ErrNotModified
		}
	}
	p.Likers = append(p.Likers, userID)
	return s.clone(p), nil
}

func (s *fakePostRepo) RemoveLiker(_ context.Context, id string, userID uint64) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, mongorepo.ErrNotModified
	}
	for i, l := range p.Likers {
		if l == userID {
			p.Likers = append(p.Likers[:i], p.Likers[i+1:]...)
			return s.clone(p), nil
		}
	}
	return nil, mongorepo.ErrNotModified
}

func (s *fakePostRepo) PushComment(_ context.Context, id string, comment *mongorepo.Comment) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, mongorepo.ErrNotModified
	}
	p.Comments = append(p.Comments, *comment)
	return s.clone(p), nil
}

func (s *fakePostRepo) SetCommentText(_ context.Context, id string, commentID primitive.ObjectID, authorID uint64, text string) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, mongorepo.ErrNotModified
	}
	for i := range p.Comments {
		if p.Comments[i].ID == commentID && p.Comments[i].Author.UserID == authorID {
			p.Comments[i].Text = text
			return s.clone(p), nil
		}
	}
	return nil, mongorepo.ErrNotModified
}

func (s *fakePostRepo) PullComment(_ context.Context, id string, commentID primitive.ObjectID) (*mongorepo.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, mongorepo.ErrNotModified
	}
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return s.clone(p), nil
		}
	}
	return nil, mongorepo.ErrNotModified
}

func (s *fakePostRepo) SyncCounters(_ context.Context, id string, likeCount, commentCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.LikeCount = likeCount
	p.CommentCount = commentCount
	return nil
}

// ---- 用户档案 ----

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uint64]*mongorepo.UserProfile

	propagations []propagation
}

type propagation struct {
	postID       string
	likeCount    int
	commentCount int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uint64]*mongorepo.UserProfile)}
}

func (s *fakeProfileRepo) addProfile(userID uint64, name string) *mongorepo.UserProfile {
	p := &mongorepo.UserProfile{
		UserID:           userID,
		Name:             name,
		Email:            name + "@test.local",
		AvatarURL:        "avatar.png",
		Posts:            make([]mongorepo.PostSummary, 0),
		AnonymousPosts:   make([]mongorepo.PostSummary, 0),
		Likes:            make([]mongorepo.PostSummary, 0),
		SentRequests:     make([]mongorepo.RequestSummary, 0),
		ReceivedRequests: make([]mongorepo.RequestSummary, 0),
	}
	s.mu.Lock()
	s.profiles[userID] = p
	s.mu.Unlock()
	return p
}

func (s *fakeProfileRepo) CreateProfile(_ context.Context, profile *mongorepo.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *fakeProfileRepo) GetByID(_ context.Context, userID uint64) (*mongorepo.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*mongorepo.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeProfileRepo) AppendPostSummary(_ context.Context, userID uint64, summary *mongorepo.PostSummary, anonymous bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if anonymous {
		p.AnonymousPosts = append(p.AnonymousPosts, *summary)
	} else {
		p.Posts = append(p.Posts, *summary)
	}
	return nil
}

func (s *fakeProfileRepo) RemovePostSummary(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		p.Posts = removeSummary(p.Posts, postID)
		p.AnonymousPosts = removeSummary(p.AnonymousPosts, postID)
		p.Likes = removeSummary(p.Likes, postID)
	}
	return nil
}

func removeSummary(list []mongorepo.PostSummary, postID string) []mongorepo.PostSummary {
	out := list[:0]
	for _, s := range list {
		if s.PostID != postID {
			out = append(out, s)
		}
	}
	return out
}

func (s *fakeProfileRepo) SetPostSummaryDescription(_ context.Context, postID string, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		for _, list := range [][]mongorepo.PostSummary{p.Posts, p.AnonymousPosts, p.Likes} {
			for i := range list {
				if list[i].PostID == postID {
					list[i].Description = description
				}
			}
		}
	}
	return nil
}

func (s *fakeProfileRepo) AppendLikeSummary(_ context.Context, userID uint64, summary *mongorepo.PostSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Likes = append(p.Likes, *summary)
	return nil
}

func (s *fakeProfileRepo) RemoveLikeSummary(_ context.Context, userID uint64, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Likes = removeSummary(p.Likes, postID)
	return nil
}

func (s *fakeProfileRepo) PropagateCounters(_ context.Context, postID string, likeCount, commentCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.propagations = append(s.propagations, propagation{postID, likeCount, commentCount})
	for _, p := range s.profiles {
		for _, list := range [][]mongorepo.PostSummary{p.Posts, p.AnonymousPosts, p.Likes} {
			for i := range list {
				if list[i].PostID == postID {
					list[i].LikeCount = likeCount
					list[i].CommentCount = commentCount
				}
			}
		}
	}
	return nil
}

func (s *fakeProfileRepo) AppendRequestSummary(_ context.Context, userID uint64, sent bool, summary *mongorepo.RequestSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if sent {
		p.SentRequests = append(p.SentRequests, *summary)
	} else {
		p.ReceivedRequests = append(p.ReceivedRequests, *summary)
	}
	return nil
}

func (s *fakeProfileRepo) SetRequestSummaryState(_ context.Context, requestID string, state string, chatID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		for _, list := range [][]mongorepo.RequestSummary{p.SentRequests, p.ReceivedRequests} {
			for i := range list {
				if list[i].RequestID == requestID {
					list[i].State = state
					list[i].ChatID = chatID
				}
			}
		}
	}
	return nil
}

func (s *fakeProfileRepo) RemoveRequestSummary(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		p.SentRequests = removeRequestSummary(p.SentRequests, requestID)
		p.ReceivedRequests = removeRequestSummary(p.ReceivedRequests, requestID)
	}
	return nil
}

func removeRequestSummary(list []mongorepo.RequestSummary, requestID string) []mongorepo.RequestSummary {
	out := list[:0]
	for _, s := range list {
		if s.RequestID != requestID {
			out = append(out, s)
		}
	}
	return out
}

// ---- 好友申请正本 ----

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*mongorepo.FriendRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*mongorepo.FriendRequest)}
}

func (s *fakeRequestRepo) Create(_ context.Context, req *mongorepo.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	cp := *req
	s.requests[req.ID.Hex()] = &cp
	return nil
}

func (s *fakeRequestRepo) GetByID(_ context.Context, id string) (*mongorepo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRequestRepo) FindPendingByPair(_ context.Context, pairKey string) (*mongorepo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.PairKey == pairKey && r.State == mongorepo.RequestPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeRequestRepo) ListBySender(_ context.Context, userID uint64, state string) ([]*mongorepo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.FriendRequest, 0)
	for _, r := range s.requests {
		if r.Sender.UserID == userID && r.State == state {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRequestRepo) ListByReceiver(_ context.Context, userID uint64, state string) ([]*mongorepo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.FriendRequest, 0)
	for _, r := range s.requests {
		if r.Receiver.UserID == userID && r.State == state {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRequestRepo) ListAccepted(_ context.Context, userID uint64) ([]*mongorepo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.FriendRequest, 0)
	for _, r := range s.requests {
		if r.State == mongorepo.RequestAccepted && (r.Sender.UserID == userID || r.Receiver.UserID == userID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRequestRepo) SetAccepted(_ context.Context, id string, chatID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	r.State = mongorepo.RequestAccepted
	r.ChatID = chatID
	return nil
}

func (s *fakeRequestRepo) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.requests, id)
	return nil
}

// ---- 会话容器 ----

type fakeConvRepo struct {
	mu      sync.Mutex
	nextID  uint64
	byKey   map[string]*model.Conversation
	byID    map[uint64]*model.Conversation
	members map[uint64][]uint64
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{
		nextID:  1,
		byKey:   make(map[string]*model.Conversation),
		byID:    make(map[uint64]*model.Conversation),
		members: make(map[uint64][]uint64),
	}
}

func (s *fakeConvRepo) FindOrCreatePrivate(_ context.Context, peerKey string, userA, userB uint64) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.byKey[peerKey]; ok {
		cp := *conv
		return &cp, nil
	}
	key := peerKey
	conv := &model.Conversation{
		ID:      s.nextID,
		Type:    1,
		PeerKey: &key,
	}
	s.nextID++
	s.byKey[peerKey] = conv
	s.byID[conv.ID] = conv
	s.members[conv.ID] = []uint64{userA, userB}
	cp := *conv
	return &cp, nil
}

func (s *fakeConvRepo) CreateGroup(_ context.Context, conv *model.Conversation, memberIDs []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.ID = s.nextID
	s.nextID++
	cp := *conv
	s.byID[conv.ID] = &cp
	s.members[conv.ID] = append([]uint64(nil), memberIDs...)
	return nil
}

func (s *fakeConvRepo) GetConversation(_ context.Context, convID uint64) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[convID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *conv
	return &cp, nil
}

func (s *fakeConvRepo) IsMember(_ context.Context, convID uint64, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.members[convID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeConvRepo) IncrMaxSeq(_ context.Context, convID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[convID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	conv.MaxMsgSeq++
	return conv.MaxMsgSeq, nil
}

func (s *fakeConvRepo) ListForUser(_ context.Context, userID uint64) ([]*model.ConversationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ConversationMember, 0)
	for convID, members := range s.members {
		for _, id := range members {
			if id == userID {
				out = append(out, &model.ConversationMember{
					ConversationID: convID,
					UserID:         userID,
					Conversation:   *s.byID[convID],
				})
			}
		}
	}
	return out, nil
}

func (s *fakeConvRepo) MemberIDs(_ context.Context, convID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.members[convID]...), nil
}

// ---- 消息 ----

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*mongorepo.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (s *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongorepo.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *fakeMessageRepo) GetHistory(_ context.Context, convID uint64, lastSeq uint64, pageSize int) ([]*mongorepo.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mongorepo.ChatMessage, 0)
	for i := len(s.messages) - 1; i >= 0 && len(out) < pageSize; i-- {
		m := s.messages[i]
		if m.ConversationID != convID {
			continue
		}
		if lastSeq > 0 && m.Seq >= lastSeq {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// ---- 事件 / 脏集合 / Pub/Sub ----

type fakeEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *fakeEmitter) Emit(_ context.Context, evt events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *fakeEmitter) kinds() []events.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Kind, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind())
	}
	return out
}

type fakeDirty struct {
	mu  sync.Mutex
	ids []string
}

func (s *fakeDirty) Mark(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (s *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, published{channel: channel, payload: payload})
	return nil
}
