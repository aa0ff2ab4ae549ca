package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultSnapshotsCollection 未配置 collection 时使用的 MongoDB 集合
const DefaultSnapshotsCollection = "status_snapshots"

// SnapshotJobConfig 单个状态计数快照任务
type SnapshotJobConfig struct {
	Name      string `mapstructure:"name"`
	Schedule  string `mapstructure:"schedule"` // 秒 分 时 日 月 周
	UserID    int64  `mapstructure:"user_id"`
	AccountID int64  `mapstructure:"account_id"` // 0 表示该用户全部账号
	Timeout   string `mapstructure:"timeout"`
	Enabled   bool   `mapstructure:"enabled"`
}

// SnapshotsConfig 状态计数快照任务配置
type SnapshotsConfig struct {
	Enabled    bool                `mapstructure:"enabled"`
	Collection string              `mapstructure:"collection"`
	Jobs       []SnapshotJobConfig `mapstructure:"jobs"`
}

// EnabledJobs 返回启用的任务
func (c *SnapshotsConfig) EnabledJobs() []SnapshotJobConfig {
	if !c.Enabled {
		return nil
	}
	var jobs []SnapshotJobConfig
	for _, job := range c.Jobs {
		if job.Enabled {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// Validate 检查任务名唯一、用户和调度表达式已填写
func (c *SnapshotsConfig) Validate() error {
	seen := make(map[string]bool, len(c.Jobs))
	for i, job := range c.Jobs {
		if job.Name == "" {
			return fmt.Errorf("snapshot job #%d: name is required", i)
		}
		if seen[job.Name] {
			return fmt.Errorf("snapshot job %q: duplicate name", job.Name)
		}
		seen[job.Name] = true
		if job.UserID <= 0 {
			return fmt.Errorf("snapshot job %q: user_id is required", job.Name)
		}
		if job.Schedule == "" {
			return fmt.Errorf("snapshot job %q: schedule is required", job.Name)
		}
	}
	return nil
}

// LoadSnapshotsConfig 在配置目录中查找 status_snapshots.yaml
// 文件不存在时返回空配置
func LoadSnapshotsConfig(configPath string, logger *zap.Logger) (*SnapshotsConfig, error) {
	v := viper.New()
	v.SetConfigName("status_snapshots")
	v.SetConfigType("yaml")

	// 添加配置路径
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if logger != nil {
				logger.Warn("status_snapshots.yaml not found, no snapshot jobs scheduled")
			}
			return emptySnapshotsConfig(), nil
		}
		return nil, fmt.Errorf("failed to read snapshots config file: %w", err)
	}

	return decodeSnapshots(v, v.ConfigFileUsed(), logger)
}

// LoadSnapshotsConfigFromFile 从指定文件加载配置
func LoadSnapshotsConfigFromFile(filePath string, logger *zap.Logger) (*SnapshotsConfig, error) {
	// 检查文件是否存在
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if logger != nil {
			logger.Warn("snapshots config file not found, no snapshot jobs scheduled",
				zap.String("file_path", filePath),
			)
		}
		return emptySnapshotsConfig(), nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(filePath)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots config file: %w", err)
	}

	return decodeSnapshots(v, filePath, logger)
}

func decodeSnapshots(v *viper.Viper, source string, logger *zap.Logger) (*SnapshotsConfig, error) {
	var cfg SnapshotsConfig
	if err := v.UnmarshalKey("snapshots", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshots config: %w", err)
	}
	// UnmarshalKey 不合并子键默认值
	if cfg.Collection == "" {
		cfg.Collection = DefaultSnapshotsCollection
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshots config: %w", err)
	}

	if logger != nil {
		logger.Info("status snapshots config loaded successfully",
			zap.String("config_file", source),
			zap.Int("jobs", len(cfg.Jobs)),
		)
	}

	return &cfg, nil
}

func emptySnapshotsConfig() *SnapshotsConfig {
	return &SnapshotsConfig{Collection: DefaultSnapshotsCollection}
}
