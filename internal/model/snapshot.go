package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoDB 集合名称
const (
	CollectionStatusSnapshots = "status_snapshots"
)

// StatusSnapshot 某一时刻各状态商品数量的快照
type StatusSnapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobName   string             `bson:"job_name" json:"job_name"`
	UserID    int64              `bson:"user_id" json:"user_id"`
	AccountID *int64             `bson:"account_id,omitempty" json:"account_id,omitempty"` // 为空表示用户全部店铺
	Counts    map[string]int     `bson:"counts" json:"counts"`
	Total     int                `bson:"total" json:"total"`
	TakenAt   time.Time          `bson:"taken_at" json:"taken_at"`
}
