package mmlclient

import (
	"context"
	"fmt"
	"strings"
)

// MMLCommand 列出命令及用法，可按名称前缀过滤
type MMLCommand struct {
	client   *Client
	registry *CommandRegistry
}

// NewMMLCommand 创建 MML 命令
func NewMMLCommand(client *Client, registry *CommandRegistry) *MMLCommand {
	return &MMLCommand{
		client:   client,
		registry: registry,
	}
}

// Name 返回命令名称
func (c *MMLCommand) Name() string {
	return "mml"
}

// Aliases 返回命令别名
func (c *MMLCommand) Aliases() []string {
	return nil
}

// Description 返回命令描述
func (c *MMLCommand) Description() string {
	return "列出所有命令及用法"
}

// Usage 返回使用说明
func (c *MMLCommand) Usage() string {
	return "mml [prefix]\n" +
		"  示例:\n" +
		"    mml          # 所有命令\n" +
		"    mml status   # 名称以 status 开头的命令"
}

// Execute 执行命令
func (c *MMLCommand) Execute(ctx context.Context, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.ToLower(args[0])
	}

	var matched []Command
	for _, cmd := range c.registry.List() {
		if strings.HasPrefix(cmd.Name(), prefix) {
			matched = append(matched, cmd)
		}
	}

	out := c.client.Out()
	if len(matched) == 0 {
		fmt.Fprintln(out, "没有可用的命令")
		return nil
	}

	tw := newTable(out)
	fmt.Fprintln(tw, "COMMAND\tALIASES\tDESCRIPTION")
	for _, cmd := range matched {
		aliases := strings.Join(cmd.Aliases(), ",")
		if aliases == "" {
			aliases = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cmd.Name(), aliases, cmd.Description())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, cmd := range matched {
		fmt.Fprintf(out, "\n[%s]\n", cmd.Name())
		for _, line := range strings.Split(cmd.Usage(), "\n") {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
	}
	return nil
}
