package listing

import (
	"context"
	"testing"

	"shopee/internal/errs"
	"shopee/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_FetchAll(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		pageSize  int
		wantCalls int
	}{
		{"partial last page", 250, 100, 3},
		{"exact multiple", 200, 100, 2},
		{"single page", 42, 100, 1},
		{"empty account", 0, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := newFakeShop()
			acct := testAccount(1, 7, 100)
			shop.items[acct.ID] = seqIDs(1000, tt.count)

			f := NewFetcher(shop, tt.pageSize, 0, nil)
			res := f.FetchAll(context.Background(), &acct, model.StatusNormal)

			require.NoError(t, res.Err)
			assert.Equal(t, tt.count, res.Total)
			assert.Equal(t, tt.wantCalls, res.Pages)
			require.Len(t, res.Refs, tt.count)
			for i, ref := range res.Refs {
				assert.Equal(t, int64(1000+i), ref.ItemID)
				assert.Same(t, &acct, ref.Account)
			}

			calls := shop.listCallsFor(acct.ID)
			require.Len(t, calls, tt.wantCalls)
			for i, c := range calls {
				assert.Equal(t, i*tt.pageSize, c.offset)
				assert.Equal(t, tt.pageSize, c.pageSize)
				assert.Equal(t, model.StatusNormal, c.status)
			}
		})
	}
}

func TestFetcher_FetchAll_StopsOnPageFailure(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.items[acct.ID] = seqIDs(1, 250)
	shop.failAtOffset[acct.ID] = 100

	res := NewFetcher(shop, 100, 0, nil).FetchAll(context.Background(), &acct, model.StatusNormal)

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, errs.ErrUpstream)
	assert.Len(t, res.Refs, 100)
	assert.Equal(t, 250, res.Total)
	assert.Equal(t, 2, res.Pages)
}

func TestFetcher_FetchAll_FirstPageFails(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.items[acct.ID] = seqIDs(1, 10)
	shop.failAtOffset[acct.ID] = 0

	res := NewFetcher(shop, 100, 0, nil).FetchAll(context.Background(), &acct, model.StatusNormal)

	require.Error(t, res.Err)
	assert.Empty(t, res.Refs)
	assert.Equal(t, 0, res.Total)
}

func TestFetcher_FetchAll_TotalFromFirstPage(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.items[acct.ID] = seqIDs(1, 180)
	shop.reportedTotal[acct.ID] = 250

	res := NewFetcher(shop, 100, 0, nil).FetchAll(context.Background(), &acct, model.StatusNormal)

	require.NoError(t, res.Err)
	assert.Equal(t, 250, res.Total)
	assert.Len(t, res.Refs, 180)
	assert.Equal(t, 2, res.Pages)
}

func TestCursor_AllStopsWhenConsumerBreaks(t *testing.T) {
	shop := newFakeShop()
	acct := testAccount(1, 7, 100)
	shop.items[acct.ID] = seqIDs(1, 500)

	cursor := NewFetcher(shop, 100, 0, nil).Cursor(&acct, model.StatusUnlisted)
	taken := 0
	for range cursor.All(context.Background()) {
		taken++
		if taken == 5 {
			break
		}
	}

	assert.Equal(t, 1, cursor.Calls())
	assert.Equal(t, 500, cursor.Total())
	assert.NoError(t, cursor.Err())
}

func TestNewFetcher_DefaultPageSize(t *testing.T) {
	f := NewFetcher(newFakeShop(), 0, 0, nil)
	assert.Equal(t, DefaultPageSize, f.pageSize)
}
