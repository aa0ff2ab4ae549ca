package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SQL 驱动名，与 sql.Open 的 driverName 一致
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	sqlPingTimeout   = 5 * time.Second
	mongoDialTimeout = 10 * time.Second
)

// Databases 已连接的数据库
// MySQL 或 PostgreSQL 保存店铺账号，MongoDB 保存状态计数快照
type Databases struct {
	MySQL      *sql.DB
	PostgreSQL *sql.DB
	MongoDB    *mongo.Database
	logger     *zap.Logger
}

// Config 数据库配置
type Config struct {
	MySQL      MySQLConfig
	PostgreSQL PostgreSQLConfig
	MongoDB    MongoDBConfig
	Logger     *zap.Logger
}

// PoolConfig 连接池参数
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (p PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Charset  string
	Pool     PoolConfig
}

// DSN 由驱动自身格式化，时间按 UTC 解析到 time.Time
func (c MySQLConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	if c.Charset != "" {
		mc.Params = map[string]string{"charset": c.Charset}
	}
	return mc.FormatDSN()
}

// PostgreSQLConfig PostgreSQL 配置
type PostgreSQLConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
	Pool     PoolConfig
}

// DSN URL 形式的 lib/pq 连接串，用户名和密码会被转义
func (c PostgreSQLConfig) DSN() string {
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// MongoDBConfig MongoDB 配置
type MongoDBConfig struct {
	Enabled     bool
	URI         string
	Database    string
	AuthSource  string
	Username    string
	Password    string
	ReplicaSet  string
	MaxPoolSize uint64
	MinPoolSize uint64
	MaxIdleTime string
}

func (c MongoDBConfig) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(c.URI)
	if c.Username != "" && c.Password != "" {
		opts.SetAuth(options.Credential{
			AuthSource: c.AuthSource,
			Username:   c.Username,
			Password:   c.Password,
		})
	}
	if c.ReplicaSet != "" {
		opts.SetReplicaSet(c.ReplicaSet)
	}
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.MinPoolSize > 0 {
		opts.SetMinPoolSize(c.MinPoolSize)
	}
	if d, err := time.ParseDuration(c.MaxIdleTime); err == nil && d > 0 {
		opts.SetMaxConnIdleTime(d)
	}
	return opts
}

// New 连接所有已启用的数据库，任一失败时关闭已建立的连接
func New(cfg Config) (_ *Databases, err error) {
	d := &Databases{logger: cfg.Logger}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	if cfg.MySQL.Enabled {
		if d.MySQL, err = openSQL(DriverMySQL, cfg.MySQL.DSN(), cfg.MySQL.Pool); err != nil {
			return nil, err
		}
		d.logger.Info("account store connected", zap.String("driver", DriverMySQL), zap.String("host", cfg.MySQL.Host))
	}

	if cfg.PostgreSQL.Enabled {
		if d.PostgreSQL, err = openSQL(DriverPostgres, cfg.PostgreSQL.DSN(), cfg.PostgreSQL.Pool); err != nil {
			return nil, err
		}
		d.logger.Info("account store connected", zap.String("driver", DriverPostgres), zap.String("host", cfg.PostgreSQL.Host))
	}

	if cfg.MongoDB.Enabled {
		if d.MongoDB, err = openMongo(cfg.MongoDB); err != nil {
			return nil, err
		}
		d.logger.Info("snapshot store connected", zap.String("database", cfg.MongoDB.Database))
	}

	return d, nil
}

func openSQL(driver, dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	pool.apply(db)

	ctx, cancel := context.WithTimeout(context.Background(), sqlPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	return db, nil
}

func openMongo(cfg MongoDBConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoDialTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(cfg.Database), nil
}

// SQL 按驱动名返回账号库连接
func (d *Databases) SQL(driver string) (*sql.DB, error) {
	var db *sql.DB
	switch driver {
	case DriverMySQL:
		db = d.MySQL
	case DriverPostgres:
		db = d.PostgreSQL
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %q", driver)
	}
	if db == nil {
		return nil, fmt.Errorf("%s is not enabled", driver)
	}
	return db, nil
}

// store 统一 Ping 和 Close 的连接视图
type store struct {
	name  string
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (d *Databases) stores() []store {
	var out []store
	for _, s := range []struct {
		name string
		db   *sql.DB
	}{{"MySQL", d.MySQL}, {"PostgreSQL", d.PostgreSQL}} {
		if s.db == nil {
			continue
		}
		db := s.db
		out = append(out, store{
			name:  s.name,
			ping:  db.PingContext,
			close: func(context.Context) error { return db.Close() },
		})
	}
	if d.MongoDB != nil {
		client := d.MongoDB.Client()
		out = append(out, store{
			name:  "MongoDB",
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: client.Disconnect,
		})
	}
	return out
}

// Close 关闭所有连接，返回合并后的错误
func (d *Databases) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), sqlPingTimeout)
	defer cancel()

	var errs []error
	for _, s := range d.stores() {
		if err := s.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", s.name, err))
			continue
		}
		if d.logger != nil {
			d.logger.Info("connection closed", zap.String("store", s.name))
		}
	}
	return errors.Join(errs...)
}

// Ping 依次检查已连接的数据库，返回第一个失败
func (d *Databases) Ping(ctx context.Context) error {
	for _, s := range d.stores() {
		if err := s.ping(ctx); err != nil {
			return fmt.Errorf("%s ping failed: %w", s.name, err)
		}
	}
	return nil
}
