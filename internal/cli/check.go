package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfeng-dev/thesisfmt/internal/format"
)

var (
	checkTemplate string
	checkJSON     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [输入文件.docx]",
	Short: "检查 docx 文档是否符合模板规范",
	Long: `逐段检查文档格式，报告与模板不符的段落。

每个段落最多报告一处问题，文档不会被修改。`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkTemplate, "template", "t", "通用模板", "模板名称")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "以 JSON 输出检查结果")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	input := args[0]
	if !strings.EqualFold(filepath.Ext(input), ".docx") {
		return fmt.Errorf("只支持 .docx 文件: %s", input)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	tpl, err := lookupTemplate(store, checkTemplate)
	if err != nil {
		return err
	}

	issues, err := format.CheckFile(input, tpl)
	if err != nil {
		return fmt.Errorf("检查失败: %w", err)
	}

	if checkJSON {
		data, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if len(issues) == 0 {
		cmd.Println("检查通过，未发现格式问题。")
		return nil
	}

	cmd.Printf("发现 %d 处格式问题:\n\n", len(issues))
	for i, issue := range issues {
		cmd.Printf("  [%d] (%s) %s\n", i+1, issue.Level, issue.Text)
		for _, item := range issue.Items {
			cmd.Printf("      - %s\n", item)
		}
	}
	return nil
}
