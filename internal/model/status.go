package model

import (
	"fmt"
	"strings"
)

// ItemStatus 商品生命周期状态
type ItemStatus string

const (
	StatusNormal    ItemStatus = "NORMAL"
	StatusUnlisted  ItemStatus = "UNLISTED"
	StatusBanned    ItemStatus = "BANNED"
	StatusDeleted   ItemStatus = "DELETED"
	StatusReviewing ItemStatus = "REVIEWING"
	// StatusSoldOut 不是远程状态，是 NORMAL 商品按库存在展示层过滤的结果
	StatusSoldOut ItemStatus = "SOLDOUT"
)

// RemoteStatuses Shopee get_item_list 支持的状态，countByStatus 按此顺序查询
var RemoteStatuses = []ItemStatus{
	StatusNormal,
	StatusUnlisted,
	StatusBanned,
	StatusDeleted,
	StatusReviewing,
}

// ParseItemStatus 解析状态参数，空值视为 NORMAL
func ParseItemStatus(s string) (ItemStatus, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StatusNormal, nil
	}
	status := ItemStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid item status: %q", s)
	}
	return status, nil
}

// IsValid 检查状态是否合法
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusNormal, StatusUnlisted, StatusBanned, StatusDeleted, StatusReviewing, StatusSoldOut:
		return true
	}
	return false
}

// Remote 返回向 Shopee 请求时使用的状态
func (s ItemStatus) Remote() ItemStatus {
	if s == StatusSoldOut {
		return StatusNormal
	}
	return s
}

func (s ItemStatus) String() string {
	return string(s)
}
