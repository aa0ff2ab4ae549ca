package repository

import (
	"context"
	"fmt"
	"time"

	"shopee/internal/database"
	"shopee/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// 历史查询的默认和最大条数
const (
	DefaultSnapshotLimit = 30
	MaxSnapshotLimit     = 500
)

// SnapshotRepository 状态计数快照存储
// 使用 database.Storage 作为底层存储实现
type SnapshotRepository struct {
	storage    *database.Storage
	collection string
	logger     *zap.Logger
}

// NewSnapshotRepository 创建快照存储，collection 为空时使用默认集合
func NewSnapshotRepository(storage *database.Storage, collection string, logger *zap.Logger) *SnapshotRepository {
	if collection == "" {
		collection = model.CollectionStatusSnapshots
	}
	return &SnapshotRepository{
		storage:    storage,
		collection: collection,
		logger:     logger,
	}
}

// SaveSnapshot 保存一次快照，Total 由 Counts 求和
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap *model.StatusSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	snap.Total = 0
	for _, n := range snap.Counts {
		snap.Total += n
	}

	id, err := r.storage.InsertOne(ctx, r.collection, snap)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to save status snapshot",
				zap.String("job", snap.JobName),
				zap.Int64("user_id", snap.UserID),
				zap.Error(err),
			)
		}
		return fmt.Errorf("failed to save status snapshot: %w", err)
	}
	if oid, ok := id.(primitive.ObjectID); ok {
		snap.ID = oid
	}

	if r.logger != nil {
		r.logger.Debug("saved status snapshot",
			zap.String("job", snap.JobName),
			zap.Int64("user_id", snap.UserID),
			zap.Int("total", snap.Total),
		)
	}
	return nil
}

// ListSnapshots 按时间倒序返回快照
// accountID 为空时只返回覆盖用户全部店铺的快照
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, userID int64, accountID *int64, limit int) ([]model.StatusSnapshot, error) {
	limit = clampLimit(limit)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "taken_at", Value: -1}})

	cursor, err := r.storage.FindDocuments(ctx, r.collection, snapshotFilter(userID, accountID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query status snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []model.StatusSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to decode status snapshots", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to decode status snapshots: %w", err)
	}
	return snapshots, nil
}

// EnsureIndexes 创建必要的索引
func (r *SnapshotRepository) EnsureIndexes(ctx context.Context) error {
	return r.storage.CreateIndexes(ctx, r.collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "account_id", Value: 1}, {Key: "taken_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "job_name", Value: 1}, {Key: "taken_at", Value: -1}},
		},
	})
}

func snapshotFilter(userID int64, accountID *int64) bson.M {
	filter := bson.M{"user_id": userID}
	if accountID != nil {
		filter["account_id"] = *accountID
	} else {
		filter["account_id"] = bson.M{"$exists": false}
	}
	return filter
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSnapshotLimit
	}
	if limit > MaxSnapshotLimit {
		return MaxSnapshotLimit
	}
	return limit
}
