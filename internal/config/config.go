package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"shopee/internal/errs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 账号表名只允许标识符字符，查询中直接拼接
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Shopee API 环境
const (
	EnvProduction = "production"
	EnvTest       = "test"
)

// 账号存储驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config 应用程序配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	ShopeeAPI    ShopeeAPIConfig    `mapstructure:"shopee_api"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	AccountStore AccountStoreConfig `mapstructure:"account_store"`
	Server       ServerConfig       `mapstructure:"server"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, production
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	DefaultTimeout string `mapstructure:"default_timeout"` // 例如: "5m"
	Location       string `mapstructure:"location"`        // 例如: "America/Sao_Paulo"
	SnapshotsFile  string `mapstructure:"snapshots_file"`  // 状态快照任务配置文件
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // 日志输出路径
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 日志保留天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧日志
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
	MongoDB    MongoDBConfig    `mapstructure:"mongodb"`
}

// PoolConfig SQL 连接池配置
type PoolConfig struct {
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeStr string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTimeStr string `mapstructure:"conn_max_idle_time"`

	// 解析后的时间，由 Load 函数填充
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Database   string `mapstructure:"database"`
	Charset    string `mapstructure:"charset"`
	PoolConfig `mapstructure:",squash"`
}

// PostgreSQLConfig PostgreSQL 配置
type PostgreSQLConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Database   string `mapstructure:"database"`
	SSLMode    string `mapstructure:"sslmode"`
	PoolConfig `mapstructure:",squash"`
}

// MongoDBConfig MongoDB 配置，用于保存状态计数快照
type MongoDBConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	AuthSource  string `mapstructure:"auth_source"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ReplicaSet  string `mapstructure:"replica_set"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
	MaxIdleTime string `mapstructure:"max_idle_time"`
}

// RedisConfig 计数缓存配置
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	CountTTL  string `mapstructure:"count_ttl"` // 例如: "2m"

	CountTTLDuration time.Duration
}

// ShopeeAPIConfig Shopee Open Platform 配置
type ShopeeAPIConfig struct {
	PartnerID   int64  `mapstructure:"partner_id"`
	PartnerKey  string `mapstructure:"partner_key"`
	Environment string `mapstructure:"environment"` // production, test
	BaseURL     string `mapstructure:"base_url"`    // 覆盖按环境选择的地址
	Timeout     string `mapstructure:"timeout"`     // 单次请求超时，例如: "15s"

	TimeoutDuration time.Duration
}

// PipelineConfig 商品聚合流水线配置
type PipelineConfig struct {
	Deadline       string `mapstructure:"deadline"` // 整次请求的截止时间
	PageSize       int    `mapstructure:"page_size"`
	ModelBatchSize int    `mapstructure:"model_batch_size"`
	PriceScale     int64  `mapstructure:"price_scale"`
	PerPageMin     int    `mapstructure:"per_page_min"`
	PerPageMax     int    `mapstructure:"per_page_max"`
	PerPageDefault int    `mapstructure:"per_page_default"`
	StrictTotals   bool   `mapstructure:"strict_totals"`

	DeadlineDuration time.Duration
}

// AccountStoreConfig 店铺账号表配置
type AccountStoreConfig struct {
	Driver string `mapstructure:"driver"` // mysql, postgres
	Table  string `mapstructure:"table"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"` // 是否启用服务器
	Host    string `mapstructure:"host"`    // 监听地址
	Port    int    `mapstructure:"port"`    // 监听端口
	Mode    string `mapstructure:"mode"`    // gin 模式: debug, release, test
}

// Load 加载配置
// 先加载 .env（可选），再读取 config.yaml，环境变量 SHOPEE_* 覆盖文件中的值
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// 设置环境变量，例如 SHOPEE_SHOPEE_API_PARTNER_KEY
	v.SetEnvPrefix("SHOPEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 解析时间字符串
	if err := config.parseDurations(); err != nil {
		return nil, fmt.Errorf("failed to parse durations: %w", err)
	}

	return &config, nil
}

// loadDotEnv 加载 .env 文件，文件不存在时忽略
// 已存在的环境变量不会被覆盖
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(configPath, ".env"))
	}
	for _, file := range candidates {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// parseDurations 解析时间字符串
func (c *Config) parseDurations() error {
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"database.mysql.conn_max_lifetime", c.Database.MySQL.ConnMaxLifetimeStr, &c.Database.MySQL.ConnMaxLifetime},
		{"database.mysql.conn_max_idle_time", c.Database.MySQL.ConnMaxIdleTimeStr, &c.Database.MySQL.ConnMaxIdleTime},
		{"database.postgresql.conn_max_lifetime", c.Database.PostgreSQL.ConnMaxLifetimeStr, &c.Database.PostgreSQL.ConnMaxLifetime},
		{"database.postgresql.conn_max_idle_time", c.Database.PostgreSQL.ConnMaxIdleTimeStr, &c.Database.PostgreSQL.ConnMaxIdleTime},
		{"redis.count_ttl", c.Redis.CountTTL, &c.Redis.CountTTLDuration},
		{"shopee_api.timeout", c.ShopeeAPI.Timeout, &c.ShopeeAPI.TimeoutDuration},
		{"pipeline.deadline", c.Pipeline.Deadline, &c.Pipeline.DeadlineDuration},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		duration, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = duration
	}
	return nil
}

// Validate 检查启动所需的配置，错误均包装 errs.ErrConfig
func (c *Config) Validate() error {
	api := c.ShopeeAPI
	if api.PartnerID <= 0 {
		return errs.Configf("shopee_api.partner_id is required")
	}
	if api.PartnerKey == "" {
		return errs.Configf("shopee_api.partner_key is required")
	}
	if api.Environment != EnvProduction && api.Environment != EnvTest {
		return errs.Configf("shopee_api.environment must be %q or %q, got %q", EnvProduction, EnvTest, api.Environment)
	}

	switch c.AccountStore.Driver {
	case DriverMySQL:
		if !c.Database.MySQL.Enabled {
			return errs.Configf("account_store.driver is mysql but database.mysql is disabled")
		}
	case DriverPostgres:
		if !c.Database.PostgreSQL.Enabled {
			return errs.Configf("account_store.driver is postgres but database.postgresql is disabled")
		}
	default:
		return errs.Configf("account_store.driver must be %q or %q, got %q", DriverMySQL, DriverPostgres, c.AccountStore.Driver)
	}
	if !tableNamePattern.MatchString(c.AccountStore.Table) {
		return errs.Configf("account_store.table %q is not a valid table name", c.AccountStore.Table)
	}

	p := c.Pipeline
	if p.PageSize <= 0 || p.PageSize > 100 {
		return errs.Configf("pipeline.page_size must be between 1 and 100, got %d", p.PageSize)
	}
	if p.ModelBatchSize <= 0 {
		return errs.Configf("pipeline.model_batch_size must be positive, got %d", p.ModelBatchSize)
	}
	if p.PriceScale <= 0 {
		return errs.Configf("pipeline.price_scale must be positive, got %d", p.PriceScale)
	}
	if p.PerPageMin <= 0 || p.PerPageMax < p.PerPageMin {
		return errs.Configf("pipeline per_page bounds are invalid: min=%d max=%d", p.PerPageMin, p.PerPageMax)
	}
	if p.PerPageDefault < p.PerPageMin || p.PerPageDefault > p.PerPageMax {
		return errs.Configf("pipeline.per_page_default %d is outside [%d, %d]", p.PerPageDefault, p.PerPageMin, p.PerPageMax)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errs.Configf("redis.addr is required when redis is enabled")
	}
	return nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// App 默认值
	v.SetDefault("app.name", "shopee-products")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	// Scheduler 默认值
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.default_timeout", "5m")
	v.SetDefault("scheduler.location", "America/Sao_Paulo")
	v.SetDefault("scheduler.snapshots_file", "")

	// Logger 默认值
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)

	// Database 默认值
	// MySQL
	v.SetDefault("database.mysql.enabled", false)
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.charset", "utf8mb4")
	v.SetDefault("database.mysql.max_open_conns", 25)
	v.SetDefault("database.mysql.max_idle_conns", 5)
	v.SetDefault("database.mysql.conn_max_lifetime", "5m")
	v.SetDefault("database.mysql.conn_max_idle_time", "10m")

	// PostgreSQL
	v.SetDefault("database.postgresql.enabled", false)
	v.SetDefault("database.postgresql.host", "localhost")
	v.SetDefault("database.postgresql.port", 5432)
	v.SetDefault("database.postgresql.username", "")
	v.SetDefault("database.postgresql.password", "")
	v.SetDefault("database.postgresql.database", "")
	v.SetDefault("database.postgresql.sslmode", "disable")
	v.SetDefault("database.postgresql.max_open_conns", 25)
	v.SetDefault("database.postgresql.max_idle_conns", 5)
	v.SetDefault("database.postgresql.conn_max_lifetime", "5m")
	v.SetDefault("database.postgresql.conn_max_idle_time", "10m")

	// MongoDB
	v.SetDefault("database.mongodb.enabled", false)
	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.database", "shopee")
	v.SetDefault("database.mongodb.auth_source", "admin")
	v.SetDefault("database.mongodb.max_pool_size", 100)
	v.SetDefault("database.mongodb.min_pool_size", 10)
	v.SetDefault("database.mongodb.max_idle_time", "30m")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "shopee:counts:")
	v.SetDefault("redis.count_ttl", "2m")

	// Shopee API 默认值
	// 未在文件中出现的键也需要默认值，环境变量才能覆盖
	v.SetDefault("shopee_api.partner_id", 0)
	v.SetDefault("shopee_api.partner_key", "")
	v.SetDefault("shopee_api.base_url", "")
	v.SetDefault("shopee_api.environment", EnvProduction)
	v.SetDefault("shopee_api.timeout", "15s")

	// Pipeline 默认值
	v.SetDefault("pipeline.deadline", "60s")
	v.SetDefault("pipeline.page_size", 100)
	v.SetDefault("pipeline.model_batch_size", 10)
	v.SetDefault("pipeline.price_scale", 100000)
	v.SetDefault("pipeline.per_page_min", 5)
	v.SetDefault("pipeline.per_page_max", 300)
	v.SetDefault("pipeline.per_page_default", 20)
	v.SetDefault("pipeline.strict_totals", false)

	// 账号存储默认值
	v.SetDefault("account_store.driver", DriverMySQL)
	v.SetDefault("account_store.table", "shopee_integrations")

	// Server 默认值
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
}

// GetDefaultTimeout 获取默认超时时间
func (c *Config) GetDefaultTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scheduler.DefaultTimeout)
}

// GetLocation 获取时区
func (c *Config) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Location)
}
