package consts

const (
	DefaultAvatarURL = "default_avatar.png"
)

// 会话类型
const (
	ConversationPrivate   int8 = 1
	ConversationGroup     int8 = 2
	ConversationCommunity int8 = 3
)
