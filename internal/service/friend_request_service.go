package service

import (
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/consts"
	"Lazo/internal/pkg/events"
	mongorepo "Lazo/internal/pkg/mongo"
	"Lazo/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type FriendRequestService interface {
	Send(ctx context.Context, senderID, receiverID uint64) (*mongorepo.FriendRequest, error)
	Accept(ctx context.Context, userID uint64, requestID string) (*mongorepo.FriendRequest, error)
	Reject(ctx context.Context, userID uint64, requestID string) error

	ListSent(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error)
	ListReceived(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error)
	ListFriends(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error)
}

type friendRequestServiceImpl struct {
	requestRepo mongorepo.FriendRequestRepo
	profileRepo mongorepo.UserRepo
	convRepo    repository.ConversationRepo
	seq         *cache.Sequencer
	bus         events.Emitter
}

func NewFriendRequestService(
	requestRepo mongorepo.FriendRequestRepo,
	profileRepo mongorepo.UserRepo,
	convRepo repository.ConversationRepo,
	seq *cache.Sequencer,
	bus events.Emitter,
) FriendRequestService {
	return &friendRequestServiceImpl{
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		convRepo:    convRepo,
		seq:         seq,
		bus:         bus,
	}
}

// Send 发起好友申请
// 无序对键做双向去重：任一方向已有挂起申请即冲突
func (s *friendRequestServiceImpl) Send(ctx context.Context, senderID, receiverID uint64) (*mongorepo.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrRequestSelf
	}

	sender, err := s.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	receiver, err := s.profileRepo.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 冲突检测走旁路缓存：挂起申请以无序对键缓存，状态转移时统一失效
	pairKey := mongorepo.PairKey(senderID, receiverID)
	var pending mongorepo.FriendRequest
	err = s.seq.Gateway().GetOrCompute(ctx, consts.FriendReqPairKey+pairKey, s.seq.ProfileTTL(), &pending, func() error {
		found, err := s.requestRepo.FindPendingByPair(ctx, pairKey)
		if err != nil {
			return err
		}
		pending = *found
		return nil
	})
	if err == nil {
		return nil, ErrRequestExist
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	req := &mongorepo.FriendRequest{
		Sender:   sender.Summary(),
		Receiver: receiver.Summary(),
		State:    mongorepo.RequestPending,
		PairKey:  pairKey,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	// 正本已提交，双方档案的摘要投影尽力追加
	s.appendRequestSummaries(ctx, req)
	s.invalidateRequestKeys(ctx, req)

	s.bus.Emit(ctx, events.FriendRequested{
		RequestID:  req.ID.Hex(),
		ReceiverID: receiverID,
		Actor:      actorOf(sender),
	})
	return req, nil
}

// Accept 接受好友申请
// 会话创建靠 peer_key 唯一索引幂等：同一对用户永远只有一个私聊，
// 接受重放、对向申请接受都会落到同一个会话上
func (s *friendRequestServiceImpl) Accept(ctx context.Context, userID uint64, requestID string) (*mongorepo.FriendRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Receiver.UserID != userID {
		return nil, UnauthorizedError
	}
	if req.State == mongorepo.RequestAccepted {
		return nil, ErrRequestAlreadyAccepted
	}
	if req.State != mongorepo.RequestPending {
		return nil, ErrRequestNotPending
	}

	conv, err := s.convRepo.FindOrCreatePrivate(ctx, req.PairKey, req.Sender.UserID, req.Receiver.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.SetAccepted(ctx, requestID, conv.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	req.State = mongorepo.RequestAccepted
	req.ChatID = conv.ID
	req.UpdatedAt = time.Now()

	// 状态转移已提交，投影同步尽力而为
	if err := s.profileRepo.SetRequestSummaryState(ctx, requestID, mongorepo.RequestAccepted, conv.ID); err != nil {
		log.ErrorContext(ctx, "set request summary state failed", "request_id", requestID, "err", err)
	}
	s.invalidateRequestKeys(ctx, req)

	receiver, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		s.bus.Emit(ctx, events.FriendAccepted{
			RequestID: requestID,
			SenderID:  req.Sender.UserID,
			ChatID:    conv.ID,
			Actor:     actorOf(receiver),
		})
	}
	return req, nil
}

// Reject 拒绝或撤回：挂起申请直接删除，双方投影拔除
func (s *friendRequestServiceImpl) Reject(ctx context.Context, userID uint64, requestID string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRequestNotFound
		}
		return err
	}
	if req.Sender.UserID != userID && req.Receiver.UserID != userID {
		return UnauthorizedError
	}
	if req.State != mongorepo.RequestPending {
		return ErrRequestNotPending
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRequestNotFound
		}
		return err
	}

	if err := s.profileRepo.RemoveRequestSummary(ctx, requestID); err != nil {
		log.ErrorContext(ctx, "remove request summary failed", "request_id", requestID, "err", err)
	}
	s.invalidateRequestKeys(ctx, req)
	return nil
}

// ListSent 已发出的挂起申请，旁路缓存
func (s *friendRequestServiceImpl) ListSent(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error) {
	key := consts.FriendReqSentKey + strconv.FormatUint(userID, 10)
	return s.cachedList(ctx, key, func() ([]*mongorepo.FriendRequest, error) {
		return s.requestRepo.ListBySender(ctx, userID, mongorepo.RequestPending)
	})
}

// ListReceived 收到的挂起申请，旁路缓存
func (s *friendRequestServiceImpl) ListReceived(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error) {
	key := consts.FriendReqReceivedKey + strconv.FormatUint(userID, 10)
	return s.cachedList(ctx, key, func() ([]*mongorepo.FriendRequest, error) {
		return s.requestRepo.ListByReceiver(ctx, userID, mongorepo.RequestPending)
	})
}

// ListFriends 好友列表即双向的已接受申请
func (s *friendRequestServiceImpl) ListFriends(ctx context.Context, userID uint64) ([]*mongorepo.FriendRequest, error) {
	key := consts.FriendReqAcceptedKey + strconv.FormatUint(userID, 10)
	return s.cachedList(ctx, key, func() ([]*mongorepo.FriendRequest, error) {
		return s.requestRepo.ListAccepted(ctx, userID)
	})
}

func (s *friendRequestServiceImpl) cachedList(ctx context.Context, key string, compute func() ([]*mongorepo.FriendRequest, error)) ([]*mongorepo.FriendRequest, error) {
	list := make([]*mongorepo.FriendRequest, 0)
	err := s.seq.Gateway().GetOrCompute(ctx, key, s.seq.ProfileTTL(), &list, func() error {
		found, err := compute()
		if err != nil {
			return err
		}
		list = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *friendRequestServiceImpl) appendRequestSummaries(ctx context.Context, req *mongorepo.FriendRequest) {
	requestID := req.ID.Hex()
	sent := &mongorepo.RequestSummary{
		RequestID: requestID,
		Peer:      req.Receiver,
		State:     req.State,
		CreatedAt: req.CreatedAt,
	}
	if err := s.profileRepo.AppendRequestSummary(ctx, req.Sender.UserID, true, sent); err != nil {
		log.ErrorContext(ctx, "append sent request summary failed", "request_id", requestID, "err", err)
	}

	received := &mongorepo.RequestSummary{
		RequestID: requestID,
		Peer:      req.Sender,
		State:     req.State,
		CreatedAt: req.CreatedAt,
	}
	if err := s.profileRepo.AppendRequestSummary(ctx, req.Receiver.UserID, false, received); err != nil {
		log.ErrorContext(ctx, "append received request summary failed", "request_id", requestID, "err", err)
	}
}

// invalidateRequestKeys 申请状态变化影响双方的列表与档案键，全部失效等下次读取
func (s *friendRequestServiceImpl) invalidateRequestKeys(ctx context.Context, req *mongorepo.FriendRequest) {
	sender := strconv.FormatUint(req.Sender.UserID, 10)
	receiver := strconv.FormatUint(req.Receiver.UserID, 10)
	s.seq.Gateway().Del(ctx,
		consts.FriendReqSentKey+sender,
		consts.FriendReqSentKey+receiver,
		consts.FriendReqReceivedKey+sender,
		consts.FriendReqReceivedKey+receiver,
		consts.FriendReqAcceptedKey+sender,
		consts.FriendReqAcceptedKey+receiver,
		consts.FriendReqKey+req.ID.Hex(),
		consts.FriendReqPairKey+req.PairKey,
		consts.ProfileKey+sender,
		consts.ProfileKey+receiver,
	)
}
