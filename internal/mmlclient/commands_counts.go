package mmlclient

import (
	"context"
	"fmt"

	"shopee/internal/model"
)

// StatusCountsCommand 各状态商品数量命令
type StatusCountsCommand struct {
	client *Client
}

// NewStatusCountsCommand 创建状态计数命令
func NewStatusCountsCommand(client *Client) *StatusCountsCommand {
	return &StatusCountsCommand{client: client}
}

// Name 返回命令名称
func (c *StatusCountsCommand) Name() string {
	return "status-counts"
}

// Aliases 返回命令别名
func (c *StatusCountsCommand) Aliases() []string {
	return []string{"sc"}
}

// Description 返回命令描述
func (c *StatusCountsCommand) Description() string {
	return "统计各状态商品数量"
}

// Usage 返回使用说明
func (c *StatusCountsCommand) Usage() string {
	return "status-counts [account_id=N]\n" +
		"  示例:\n" +
		"    status-counts               # 全部店铺\n" +
		"    status-counts account_id=3  # 指定店铺"
}

// Execute 执行命令
func (c *StatusCountsCommand) Execute(ctx context.Context, args []string) error {
	query, err := parseParams(args, "account_id")
	if err != nil {
		return err
	}

	counts := map[string]int{}
	if err := c.client.GetJSON(ctx, "/api/v1/products/status-counts", query, &counts); err != nil {
		return err
	}

	tw := newTable(c.client.Out())
	fmt.Fprintln(tw, "STATUS\tCOUNT")
	total := 0
	for _, status := range model.RemoteStatuses {
		n := counts[string(status)]
		total += n
		fmt.Fprintf(tw, "%s\t%d\n", status, n)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\n", total)
	return tw.Flush()
}
