package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfeng-dev/thesisfmt/internal/format"
	"github.com/mfeng-dev/thesisfmt/internal/ingest"
)

var (
	importOutput   string
	importTemplate string
	importQuiet    bool
)

var importCmd = &cobra.Command{
	Use:   "import [输入文件]",
	Short: "从 Markdown/HTML/文本/PDF 生成排版好的 docx",
	Long: `解析源文件，推断各段落层级，按模板生成新的 docx 文档。

支持的格式: .txt .md .markdown .html .htm .pdf
Markdown 与 HTML 的标题层级直接采用，其余段落按文本特征识别。`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "输出文件路径")
	importCmd.Flags().StringVarP(&importTemplate, "template", "t", "通用模板", "模板名称")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "不输出逐段进度")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	input := args[0]
	if !ingest.IsSupportedExtension(input) {
		return fmt.Errorf("不支持的文件类型: %s", filepath.Ext(input))
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	tpl, err := lookupTemplate(store, importTemplate)
	if err != nil {
		return err
	}

	parser, err := ingest.ForFile(input)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	draft, err := parser.Parse(f, filepath.Base(input))
	if err != nil {
		return fmt.Errorf("解析失败: %w", err)
	}

	progress := func(line string) {
		if !importQuiet {
			cmd.Println(line)
		}
	}

	data, n, err := format.Materialize(draft, tpl, progress)
	if err != nil {
		return fmt.Errorf("生成失败: %w", err)
	}

	output := importOutput
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".docx"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}

	cmd.Printf("完成！共生成 %d 个段落 → %s\n", n, output)
	return nil
}
