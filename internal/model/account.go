package model

import (
	"fmt"
	"time"
)

// Account 已授权的 Shopee 店铺连接
type Account struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ShopID      int64     `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Label 店铺展示名称
func (a *Account) Label() string {
	if a.ShopName != "" {
		return a.ShopName
	}
	return fmt.Sprintf("Shop %d", a.ShopID)
}

// ItemRef 远程商品引用：(账号, 商品 ID)
// 不同账号下相同的商品 ID 是不同的商品
type ItemRef struct {
	Account *Account
	ItemID  int64
}

// Key 账号 + 商品 ID 组合键
func (r ItemRef) Key() string {
	return RefKey(r.Account.ID, r.ItemID)
}

// RefKey 由账号 ID 和商品 ID 生成组合键
func RefKey(accountID, itemID int64) string {
	return fmt.Sprintf("%d:%d", accountID, itemID)
}
