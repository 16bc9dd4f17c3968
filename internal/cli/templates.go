package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfeng-dev/thesisfmt/internal/config"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "管理格式模板",
	RunE:  runTemplatesList,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有模板",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [模板名称]",
	Short: "显示模板详情",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesSetCmd = &cobra.Command{
	Use:   "set [模板名称] [JSON文件]",
	Short: "新建或更新模板",
	Long: `从 JSON 文件读取模板定义并保存。

JSON 字段: chinese_font, western_font, sizes, line_spacing,
spacing, first_line_indent。字号以磅为单位，五个层级
(main_title/heading1/heading2/heading3/body) 必须齐全。`,
	Args: cobra.ExactArgs(2),
	RunE: runTemplatesSet,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete [模板名称]",
	Short: "删除模板",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesDelete,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesSetCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	names := store.Names()
	if len(names) == 0 {
		cmd.Println("没有可用模板。")
		return nil
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	tpl, err := lookupTemplate(store, args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func runTemplatesSet(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	var tpl config.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return fmt.Errorf("解析模板 JSON 失败: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Put(name, &tpl); err != nil {
		return err
	}

	cmd.Printf("模板已保存: %s\n", name)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	cmd.Printf("模板已删除: %s\n", args[0])
	return nil
}
