package consts

// 缓存键布局：按实体类型 + ID 命名空间划分，聚合键使用固定名称
const (
	PostKey              = "publicacion:"
	PostAllKey           = "publicaciones:all"
	UserKey              = "user:"
	ProfileKey           = "profile:"
	UserEmailKey         = "user:email:"
	FriendReqSentKey     = "friendreq:user:"
	FriendReqReceivedKey = "friendreq:received:"
	FriendReqAcceptedKey = "friendreq:accepted:"
	FriendReqKey         = "friendreq:req:"
	FriendReqPairKey     = "friendreq:pair:"
)

// PostDirtyKey 计数修复脏集合：每次计数变更后写入帖子 ID，由定时任务兜底修复
const PostDirtyKey = "publicacion:dirty"

// Redis Pub/Sub 频道前缀
const (
	NotifyUserChannel = "notify:user:"
	ChatConvChannel   = "chat:conv:"
)
