package wire

import (
	"Lazo/internal/api"
	"Lazo/internal/api/config"
	"Lazo/internal/api/handler"
	"Lazo/internal/job"
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/consts"
	pkgcron "Lazo/internal/pkg/cron"
	"Lazo/internal/pkg/events"
	"Lazo/internal/pkg/kafka"
	mongorepo "Lazo/internal/pkg/mongo"
	pkgredis "Lazo/internal/pkg/redis"
	"Lazo/internal/repository"
	"Lazo/internal/service"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *pkgcron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, rdb *redisv9.Client, cfg *config.Config) (*ApplicationContainer, error) {
	// 关系库仓储
	userRepo := repository.NewUserRepo(db)
	convRepo := repository.NewConversationRepo(db)

	// 文档库仓储
	profileRepo := mongorepo.NewUserRepo(mongoDB)
	postRepo := mongorepo.NewPostRepo(mongoDB)
	requestRepo := mongorepo.NewFriendRequestRepo(mongoDB)
	notifyRepo := mongorepo.NewNotificationRepo(mongoDB)
	messageRepo := mongorepo.NewMessageRepo(mongoDB)

	// 缓存网关与失效-回填排序器
	gateway := cache.NewGateway(cache.NewRedisStore(rdb))
	seq := cache.NewSequencer(gateway, cfg.ProfileTTL(), cfg.AggregateTTL())

	// 事件总线、Pub/Sub 总线、脏集合
	bus := events.NewBus()
	broker := pkgredis.NewBroker(rdb)
	dirty := pkgredis.NewDirtySet(rdb, consts.PostDirtyKey)

	// 服务层
	userService := service.NewUserService(userRepo, profileRepo, seq)
	postService := service.NewPostService(postRepo, profileRepo, seq)
	actionService := service.NewPostActionService(postRepo, profileRepo, seq, dirty, bus)
	requestService := service.NewFriendRequestService(requestRepo, profileRepo, convRepo, seq, bus)
	notifyService := service.NewNotificationService(notifyRepo, broker, bus)
	imService := service.NewIMService(convRepo, messageRepo, profileRepo, broker)

	handlers := &api.HandlersGroup{
		UserHandler:          handler.NewUserHandler(userService),
		PostHandler:          handler.NewPostHandler(postService),
		PostActionHandler:    handler.NewPostActionHandler(actionService),
		FriendRequestHandler: handler.NewFriendRequestHandler(requestService),
		NotificationHandler:  handler.NewNotificationHandler(notifyService),
		IMHandler:            handler.NewIMHandler(imService),
		WsHandler:            handler.NewWsHandler(imService, broker),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, actionService)
	if err != nil {
		return nil, err
	}

	repairJob := job.NewCounterRepairJob(dirty, actionService)
	cronMgr := pkgcron.NewCronManager(cfg, repairJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
