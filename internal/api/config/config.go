package config

// Config 配置主体
type Config struct {
	Server              ServerConfig        `mapstructure:"server"`
	DB                  DBConfig            `mapstructure:"database"`
	Redis               RedisConfig         `mapstructure:"redis"`
	Mongo               MongoConfig         `mapstructure:"mongo"`
	Cache               CacheConfig         `mapstructure:"cache"`
	Kafka               KafkaConfig         `mapstructure:"kafka"`
	KafkaRepairConsumer KafkaRepairConsumer `mapstructure:"kafka_repair_consumer"`
	Repair              RepairConfig        `mapstructure:"repair"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 文档库配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// CacheConfig 缓存 TTL 配置（秒）
// 档案类读取与聚合类读取的过期时间不同，禁止调用点各自写死
type CacheConfig struct {
	ProfileTTL   int `mapstructure:"profile_ttl"`
	AggregateTTL int `mapstructure:"aggregate_ttl"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaRepairConsumer 计数修复消费者
type KafkaRepairConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// RepairConfig 脏集合兜底任务配置
type RepairConfig struct {
	CronSpec string `mapstructure:"cron_spec"`
}
