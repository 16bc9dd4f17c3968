package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfeng-dev/thesisfmt/internal/format"
)

var (
	convertOutput   string
	convertTemplate string
	convertQuiet    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [输入文件.docx]",
	Short: "按模板转换 docx 文档格式",
	Long: `读取 docx 文档，识别每个段落的层级并按模板统一格式。

原文件不会被修改，结果写入新文件（默认在原文件名后
加 _formatted 后缀）。`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "输出文件路径")
	convertCmd.Flags().StringVarP(&convertTemplate, "template", "t", "通用模板", "模板名称")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "不输出逐段进度")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	if !strings.EqualFold(filepath.Ext(input), ".docx") {
		return fmt.Errorf("只支持 .docx 文件: %s", input)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	tpl, err := lookupTemplate(store, convertTemplate)
	if err != nil {
		return err
	}

	output := convertOutput
	if output == "" {
		output = defaultOutputPath(input)
	}

	progress := func(line string) {
		if !convertQuiet {
			cmd.Println(line)
		}
	}

	n, err := format.ConvertFile(input, output, tpl, progress)
	if err != nil {
		return fmt.Errorf("转换失败: %w", err)
	}

	cmd.Printf("完成！共处理 %d 个段落 → %s\n", n, output)
	return nil
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_formatted" + ext
}
