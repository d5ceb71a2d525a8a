package service

import (
	"Lazo/internal/pkg/consts"
	"Lazo/internal/pkg/events"
	mongorepo "Lazo/internal/pkg/mongo"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
)

// Publisher Pub/Sub 发布端
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type NotificationService interface {
	List(ctx context.Context, userID uint64, page, pageSize int64) ([]*mongorepo.Notification, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID uint64, id string) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationServiceImpl struct {
	notifyRepo mongorepo.NotificationRepo
	broker     Publisher
}

// NewNotificationService 订阅领域事件，把通知落库并通过 Pub/Sub 实时推送
// 落库即送达保证的全部，推送尽力而为
func NewNotificationService(
	notifyRepo mongorepo.NotificationRepo,
	broker Publisher,
	bus *events.Bus,
) NotificationService {
	s := &notificationServiceImpl{
		notifyRepo: notifyRepo,
		broker:     broker,
	}

	bus.On(events.KindPostLiked, s.onPostLiked)
	bus.On(events.KindPostCommented, s.onPostCommented)
	bus.On(events.KindFriendRequested, s.onFriendRequested)
	bus.On(events.KindFriendAccepted, s.onFriendAccepted)
	return s
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uint64, page, pageSize int64) ([]*mongorepo.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.notifyRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.notifyRepo.UnreadCount(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID uint64, id string) error {
	if err := s.notifyRepo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.notifyRepo.MarkAllRead(ctx, userID)
}

// onPostLiked 给帖子作者发通知，自己给自己点赞不通知
func (s *notificationServiceImpl) onPostLiked(ctx context.Context, evt events.Event) {
	liked, ok := evt.(events.PostLiked)
	if !ok {
		return
	}
	if liked.Actor.UserID == liked.Post.OwnerID {
		return
	}

	s.deliver(ctx, &mongorepo.Notification{
		ReceiverID: liked.Post.OwnerID,
		Sender:     summaryOfActor(liked.Actor),
		Type:       string(events.KindPostLiked),
		PostID:     liked.Post.PostID,
		Message:    liked.Actor.Name + " le gustó tu publicación",
	})
}

func (s *notificationServiceImpl) onPostCommented(ctx context.Context, evt events.Event) {
	commented, ok := evt.(events.PostCommented)
	if !ok {
		return
	}
	if commented.Actor.UserID == commented.Post.OwnerID {
		return
	}

	s.deliver(ctx, &mongorepo.Notification{
		ReceiverID: commented.Post.OwnerID,
		Sender:     summaryOfActor(commented.Actor),
		Type:       string(events.KindPostCommented),
		PostID:     commented.Post.PostID,
		Message:    commented.Actor.Name + " comentó tu publicación: " + commented.CommentText,
	})
}

func (s *notificationServiceImpl) onFriendRequested(ctx context.Context, evt events.Event) {
	requested, ok := evt.(events.FriendRequested)
	if !ok {
		return
	}

	s.deliver(ctx, &mongorepo.Notification{
		ReceiverID: requested.ReceiverID,
		Sender:     summaryOfActor(requested.Actor),
		Type:       string(events.KindFriendRequested),
		Message:    requested.Actor.Name + " te envió una solicitud de amistad",
	})
}

func (s *notificationServiceImpl) onFriendAccepted(ctx context.Context, evt events.Event) {
	accepted, ok := evt.(events.FriendAccepted)
	if !ok {
		return
	}

	s.deliver(ctx, &mongorepo.Notification{
		ReceiverID: accepted.SenderID,
		Sender:     summaryOfActor(accepted.Actor),
		Type:       string(events.KindFriendAccepted),
		Message:    accepted.Actor.Name + " aceptó tu solicitud de amistad",
	})
}

// deliver 先落库再推送，两步各自尽力，互不阻塞
func (s *notificationServiceImpl) deliver(ctx context.Context, n *mongorepo.Notification) {
	n.CreatedAt = time.Now()

	if err := s.notifyRepo.Create(ctx, n); err != nil {
		log.ErrorContext(ctx, "persist notification failed", "receiver_id", n.ReceiverID, "err", err)
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.ErrorContext(ctx, "marshal notification failed", "err", err)
		return
	}
	channel := consts.NotifyUserChannel + strconv.FormatUint(n.ReceiverID, 10)
	if err := s.broker.Publish(ctx, channel, payload); err != nil {
		log.WarnContext(ctx, "push notification failed", "channel", channel, "err", err)
	}
}

func summaryOfActor(actor events.Actor) mongorepo.UserSummary {
	return mongorepo.UserSummary{
		UserID:    actor.UserID,
		Name:      actor.Name,
		AvatarURL: actor.AvatarURL,
	}
}
