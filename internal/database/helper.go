package database

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	errNotInitialized = errors.New("database manager not initialized")
	errMongoDisabled  = errors.New("MongoDB is not enabled or not connected")
)

// 进程级连接，由 main 在启动时设置
var current atomic.Pointer[Databases]

// SetGlobal 设置进程级连接
func SetGlobal(dbs *Databases) {
	current.Store(dbs)
}

// GetGlobal 返回进程级连接，未设置时为 nil
func GetGlobal() *Databases {
	return current.Load()
}

// GetSQL 返回账号库所用驱动的连接
func GetSQL(driver string) (*sql.DB, error) {
	dbs := GetGlobal()
	if dbs == nil {
		return nil, errNotInitialized
	}
	return dbs.SQL(driver)
}

// GetMongoDB 返回快照库
func GetMongoDB() (*mongo.Database, error) {
	dbs := GetGlobal()
	if dbs == nil {
		return nil, errNotInitialized
	}
	if dbs.MongoDB == nil {
		return nil, errMongoDisabled
	}
	return dbs.MongoDB, nil
}

// PingAll 供健康检查使用
func PingAll(ctx context.Context) error {
	dbs := GetGlobal()
	if dbs == nil {
		return errNotInitialized
	}
	return dbs.Ping(ctx)
}
