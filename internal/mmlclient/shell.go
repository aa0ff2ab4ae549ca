package mmlclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt 交互模式提示符
const Prompt = "mml> "

// Shell 持有客户端和全部已注册命令
type Shell struct {
	client   *Client
	registry *CommandRegistry
}

// NewShell 创建 Shell 并注册内置与业务命令
func NewShell(client *Client) (*Shell, error) {
	s := &Shell{client: client, registry: NewCommandRegistry()}
	for _, cmd := range []Command{
		NewProductsCommand(client),
		NewStatusCountsCommand(client),
		NewHistoryCommand(client),
		NewUserCommand(client),
		NewHelpCommand(client, s.registry),
		NewMMLCommand(client, s.registry),
		NewExitCommand(client),
	} {
		if err := s.registry.Register(cmd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Registry 返回命令注册表
func (s *Shell) Registry() *CommandRegistry {
	return s.registry
}

// Exec 执行一条命令，exit 在单次模式下视为成功
func (s *Shell) Exec(ctx context.Context, name string, args []string) error {
	err := s.dispatch(ctx, strings.ToLower(name), args)
	if errors.Is(err, ErrExit) {
		return nil
	}
	return err
}

// Run 逐行读取命令直到 EOF 或 exit
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	out := s.client.Out()
	fmt.Fprintf(out, "MML Client - Shopee 商品服务\n服务器: %s\n", s.client.GetServerURL())
	if s.client.UserID() == 0 {
		fmt.Fprintln(out, "未设置用户，先执行 'user <id>'")
	}
	fmt.Fprintln(out, "输入 'help' 查看帮助，'exit' 退出")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		err := s.dispatch(ctx, strings.ToLower(fields[0]), fields[1:])
		switch {
		case errors.Is(err, ErrExit):
			return nil
		case err != nil:
			fmt.Fprintf(out, "错误: %v\n", err)
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, name string, args []string) error {
	cmd, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("未知命令: %s，输入 'help' 查看帮助", name)
	}
	return cmd.Execute(ctx, args)
}
