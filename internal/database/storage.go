package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Storage MongoDB 存储管理器
type Storage struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewStorage 创建新的存储管理器
func NewStorage(db *mongo.Database, logger *zap.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetCollection 获取集合
func (s *Storage) GetCollection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// InsertOne 插入单个文档，返回插入的 _id
func (s *Storage) InsertOne(ctx context.Context, collectionName string, doc interface{}) (interface{}, error) {
	result, err := s.db.Collection(collectionName).InsertOne(ctx, doc)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to insert document to MongoDB",
				zap.String("collection", collectionName),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("document saved to MongoDB",
			zap.String("collection", collectionName),
			zap.Any("inserted_id", result.InsertedID),
		)
	}
	return result.InsertedID, nil
}

// FindDocuments 按条件查询文档，调用方负责关闭游标
func (s *Storage) FindDocuments(ctx context.Context, collectionName string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	cursor, err := s.db.Collection(collectionName).Find(ctx, filter, opts...)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to query MongoDB",
				zap.String("collection", collectionName),
				zap.Any("filter", filter),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	return cursor, nil
}

// CreateIndexes 创建索引，已存在的同名索引会被忽略
func (s *Storage) CreateIndexes(ctx context.Context, collectionName string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	names, err := s.db.Collection(collectionName).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", collectionName, err)
	}

	if s.logger != nil {
		s.logger.Info("ensured MongoDB indexes",
			zap.String("collection", collectionName),
			zap.Strings("indexes", names),
		)
	}
	return nil
}
