package listing

import (
	"context"
	"testing"

	"shopee/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	store, _ := twoAccountFixture()
	r := NewResolver(store, nil)
	own, other, missing := int64(2), int64(9), int64(404)

	tests := []struct {
		name      string
		userID    int64
		accountID *int64
		wantIDs   []int64
		wantErr   error
	}{
		{"all accounts", 7, nil, []int64{1, 2}, nil},
		{"single account", 7, &own, []int64{2}, nil},
		{"account of another user", 7, &other, nil, errs.ErrNotFound},
		{"unknown account", 7, &missing, nil, errs.ErrNotFound},
		{"no user", 0, nil, nil, errs.ErrAuth},
		{"user without accounts", 55, nil, []int64{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, err := r.Resolve(context.Background(), tt.userID, tt.accountID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, accounts)
			ids := make([]int64, 0, len(accounts))
			for _, a := range accounts {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
