package mmlclient

import (
	"context"
	"fmt"
)

// builtin 不访问服务端的内置命令
type builtin struct {
	name    string
	aliases []string
	desc    string
	usage   string
	run     func(args []string) error
}

func (b *builtin) Name() string        { return b.name }
func (b *builtin) Aliases() []string   { return b.aliases }
func (b *builtin) Description() string { return b.desc }
func (b *builtin) Usage() string       { return b.usage }

func (b *builtin) Execute(_ context.Context, args []string) error {
	return b.run(args)
}

// NewHelpCommand help [command]
func NewHelpCommand(client *Client, registry *CommandRegistry) Command {
	return &builtin{
		name:    "help",
		aliases: []string{"h", "?"},
		desc:    "显示帮助信息",
		usage: "help [command]\n" +
			"    help           # 全部命令\n" +
			"    help products  # products 的参数说明",
		run: func(args []string) error {
			text := registry.Help()
			if len(args) > 0 {
				text = registry.HelpForCommand(args[0])
			}
			fmt.Fprintln(client.Out(), text)
			return nil
		},
	}
}

// NewExitCommand 返回 ErrExit，由调用方结束交互循环
func NewExitCommand(client *Client) Command {
	return &builtin{
		name:    "exit",
		aliases: []string{"quit", "q"},
		desc:    "退出客户端",
		usage:   "exit | quit | q",
		run: func([]string) error {
			fmt.Fprintln(client.Out(), "再见!")
			return ErrExit
		},
	}
}
