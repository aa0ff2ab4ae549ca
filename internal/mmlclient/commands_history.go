package mmlclient

import (
	"context"
	"fmt"
	"time"

	"shopee/internal/model"
)

// HistoryCommand 状态计数快照历史命令
type HistoryCommand struct {
	client *Client
}

// NewHistoryCommand 创建历史命令
func NewHistoryCommand(client *Client) *HistoryCommand {
	return &HistoryCommand{client: client}
}

// Name 返回命令名称
func (c *HistoryCommand) Name() string {
	return "history"
}

// Aliases 返回命令别名
func (c *HistoryCommand) Aliases() []string {
	return []string{"hist"}
}

// Description 返回命令描述
func (c *HistoryCommand) Description() string {
	return "查看定时任务保存的状态计数快照"
}

// Usage 返回使用说明
func (c *HistoryCommand) Usage() string {
	return "history [account_id=N] [limit=N]\n" +
		"  不指定 account_id 时显示覆盖全部店铺的快照\n" +
		"  示例:\n" +
		"    history limit=7"
}

// Execute 执行命令
func (c *HistoryCommand) Execute(ctx context.Context, args []string) error {
	query, err := parseParams(args, "account_id", "limit")
	if err != nil {
		return err
	}

	var snapshots []model.StatusSnapshot
	if err := c.client.GetJSON(ctx, "/api/v1/products/status-counts/history", query, &snapshots); err != nil {
		return err
	}

	out := c.client.Out()
	if len(snapshots) == 0 {
		fmt.Fprintln(out, "没有快照")
		return nil
	}

	tw := newTable(out)
	header := "TAKEN_AT\tJOB"
	for _, status := range model.RemoteStatuses {
		header += "\t" + string(status)
	}
	fmt.Fprintln(tw, header+"\tTOTAL")

	for _, s := range snapshots {
		line := fmt.Sprintf("%s\t%s", s.TakenAt.Format(time.RFC3339), s.JobName)
		for _, status := range model.RemoteStatuses {
			line += fmt.Sprintf("\t%d", s.Counts[string(status)])
		}
		fmt.Fprintf(tw, "%s\t%d\n", line, s.Total)
	}
	return tw.Flush()
}
