// Package cli implements the thesisfmt command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfeng-dev/thesisfmt/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "thesisfmt",
	Short: "论文格式转换工具",
	Long: `thesisfmt 将 docx 论文按模板规范重新排版。

自动识别主标题、各级标题和正文段落，统一字体、字号、
行距、段间距和首行缩进。模板保存在 JSON 配置文件中。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "模板配置文件路径")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openStore() (*config.Store, error) {
	store, err := config.OpenStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	return store, nil
}

func lookupTemplate(store *config.Store, name string) (*config.Template, error) {
	tpl, found := store.Get(name)
	if !found {
		return nil, fmt.Errorf("模板不存在: %s（可用模板: %v）", name, store.Names())
	}
	return tpl, nil
}
