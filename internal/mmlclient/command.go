package mmlclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"text/tabwriter"
)

// ErrExit 退出交互式客户端
var ErrExit = errors.New("exit requested")

// Command 一条客户端命令，Usage 在 help <命令> 中原样输出
type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry 按主名和别名索引的命令集合
type CommandRegistry struct {
	index   map[string]Command
	primary []Command
}

// NewCommandRegistry 创建空的命令注册表
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{index: make(map[string]Command)}
}

// Register 注册命令，主名或任一别名冲突时整体拒绝
func (r *CommandRegistry) Register(cmd Command) error {
	keys := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, k := range keys {
		if prev, taken := r.index[k]; taken {
			return fmt.Errorf("name %q of command %s already used by %s", k, cmd.Name(), prev.Name())
		}
	}
	for _, k := range keys {
		r.index[k] = cmd
	}
	r.primary = append(r.primary, cmd)
	return nil
}

// Get 按主名或别名查找
func (r *CommandRegistry) Get(name string) (Command, bool) {
	cmd, found := r.index[name]
	return cmd, found
}

// List 按主名排序，每个命令只出现一次
func (r *CommandRegistry) List() []Command {
	out := slices.Clone(r.primary)
	slices.SortFunc(out, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// Help 全部命令的概要
func (r *CommandRegistry) Help() string {
	cmds := r.List()
	if len(cmds) == 0 {
		return "没有已注册的命令"
	}

	var b strings.Builder
	b.WriteString("MML Client - Shopee 商品服务命令行客户端\n\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, cmd := range cmds {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", cmd.Name(), strings.Join(cmd.Aliases(), ","), cmd.Description())
	}
	_ = tw.Flush()
	b.WriteString("\n'help <命令>' 查看参数说明\n")
	return b.String()
}

// HelpForCommand 单个命令的完整说明
func (r *CommandRegistry) HelpForCommand(name string) string {
	cmd, found := r.Get(name)
	if !found {
		return fmt.Sprintf("未知命令 %q，'help' 列出全部命令", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", cmd.Name(), cmd.Description())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(&b, "别名: %s\n", strings.Join(aliases, ", "))
	}
	fmt.Fprintf(&b, "用法:\n  %s\n", cmd.Usage())
	return b.String()
}

// parseParams 解析 key=value 形式的参数，只接受 allowed 中的键
// 单独出现的键视为 key=true
func parseParams(args []string, allowed ...string) (url.Values, error) {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}

	values := url.Values{}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok[key] {
			return nil, fmt.Errorf("unknown parameter: %s", key)
		}
		if !found {
			value = "true"
		}
		values.Set(key, strings.TrimSpace(value))
	}
	return values, nil
}
