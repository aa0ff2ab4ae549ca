package mmlclient

import (
	"context"
	"fmt"
	"strconv"
)

// UserCommand 查看或切换当前用户
type UserCommand struct {
	client *Client
}

// NewUserCommand 创建用户命令
func NewUserCommand(client *Client) *UserCommand {
	return &UserCommand{client: client}
}

// Name 返回命令名称
func (c *UserCommand) Name() string {
	return "user"
}

// Aliases 返回命令别名
func (c *UserCommand) Aliases() []string {
	return []string{"u"}
}

// Description 返回命令描述
func (c *UserCommand) Description() string {
	return "查看或切换请求使用的用户 ID"
}

// Usage 返回使用说明
func (c *UserCommand) Usage() string {
	return "user [id]\n" +
		"  示例:\n" +
		"    user     # 显示当前用户\n" +
		"    user 42  # 切换到用户 42"
}

// Execute 执行命令
func (c *UserCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid user ID: %s", args[0])
		}
		c.client.SetUserID(id)
	}

	if c.client.UserID() == 0 {
		fmt.Fprintln(c.client.Out(), "未设置用户")
		return nil
	}
	fmt.Fprintf(c.client.Out(), "当前用户: %d\n", c.client.UserID())
	return nil
}
