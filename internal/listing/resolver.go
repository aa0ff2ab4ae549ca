package listing

import (
	"context"
	"errors"
	"fmt"

	"shopee/internal/errs"
	"shopee/internal/model"

	"go.uber.org/zap"
)

// AccountStore 店铺账号存储（只读）
type AccountStore interface {
	// ListActiveAccounts 返回用户的全部启用账号，最近绑定的在前
	ListActiveAccounts(ctx context.Context, userID int64) ([]model.Account, error)
	// GetActiveAccount 账号不存在、未启用或不属于该用户时返回 errs.ErrNotFound
	GetActiveAccount(ctx context.Context, userID, accountID int64) (*model.Account, error)
}

// Resolver 解析本次请求要查询的账号
type Resolver struct {
	store  AccountStore
	logger *zap.Logger
}

// NewResolver 创建账号解析器
func NewResolver(store AccountStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve 指定 accountID 时返回单个账号，否则返回用户全部启用账号
// 用户没有账号时返回空列表
func (r *Resolver) Resolve(ctx context.Context, userID int64, accountID *int64) ([]model.Account, error) {
	if userID <= 0 {
		return nil, errs.ErrAuth
	}

	if accountID != nil {
		acct, err := r.store.GetActiveAccount(ctx, userID, *accountID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, fmt.Errorf("account %d: %w", *accountID, errs.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load account %d: %w", *accountID, err)
		}
		return []model.Account{*acct}, nil
	}

	accounts, err := r.store.ListActiveAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []model.Account{}
	}

	r.logger.Debug("accounts resolved",
		zap.Int64("user_id", userID),
		zap.Int("count", len(accounts)),
	)
	return accounts, nil
}
