package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"shopee/internal/database"
	"shopee/internal/errs"
	"shopee/internal/model"

	"go.uber.org/zap"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AccountRepository 店铺账号存储（只读）
// 表结构：id, user_id, shop_id, shop_name, access_token, is_active, created_at
type AccountRepository struct {
	db     *sql.DB
	driver string
	table  string
	logger *zap.Logger
}

// NewAccountRepository 创建账号存储
// driver 为 database.DriverMySQL 或 database.DriverPostgres，决定占位符风格
func NewAccountRepository(db *sql.DB, driver, table string, logger *zap.Logger) (*AccountRepository, error) {
	if driver != database.DriverMySQL && driver != database.DriverPostgres {
		return nil, fmt.Errorf("unsupported account store driver: %q", driver)
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid account table name: %q", table)
	}
	return &AccountRepository{
		db:     db,
		driver: driver,
		table:  table,
		logger: logger,
	}, nil
}

const accountColumns = "id, user_id, shop_id, shop_name, access_token, created_at"

// ListActiveAccounts 返回用户的全部启用账号，最近绑定的在前
func (r *AccountRepository) ListActiveAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE user_id = %s AND is_active = %s ORDER BY created_at DESC, id DESC",
		accountColumns, r.table, r.placeholder(1), r.placeholder(2),
	)

	rows, err := r.db.QueryContext(ctx, query, userID, true)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to query accounts",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("loaded active accounts",
			zap.Int64("user_id", userID),
			zap.Int("count", len(accounts)),
		)
	}
	return accounts, nil
}

// GetActiveAccount 获取用户的单个启用账号，不存在时返回 errs.ErrNotFound
func (r *AccountRepository) GetActiveAccount(ctx context.Context, userID, accountID int64) (*model.Account, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = %s AND user_id = %s AND is_active = %s",
		accountColumns, r.table, r.placeholder(1), r.placeholder(2), r.placeholder(3),
	)

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, accountID, userID, true))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d of user %d: %w", accountID, userID, errs.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.Error("failed to query account",
				zap.Int64("user_id", userID),
				zap.Int64("account_id", accountID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return acct, nil
}

// placeholder MySQL 使用 ?，PostgreSQL 使用 $n
func (r *AccountRepository) placeholder(n int) string {
	if r.driver == database.DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		acct     model.Account
		shopName sql.NullString
		token    sql.NullString
	)
	if err := row.Scan(&acct.ID, &acct.UserID, &acct.ShopID, &shopName, &token, &acct.CreatedAt); err != nil {
		return nil, err
	}
	acct.ShopName = shopName.String
	acct.AccessToken = token.String
	return &acct, nil
}
