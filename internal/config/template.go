package config

import (
	"fmt"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
)

// Template prescribes fonts, sizes, spacing and indentation for one
// document style. Sizes are half-points; Spacing pairs are
// [before, after] in points; LineSpacing is the body multiplier over
// single spacing. Headings always get single spacing regardless of it.
type Template struct {
	ChineseFont     string                `json:"chinese_font"`
	WesternFont     string                `json:"western_font"`
	Sizes           map[string]int        `json:"sizes"`
	LineSpacing     float64               `json:"line_spacing"`
	Spacing         map[string][2]float64 `json:"spacing"`
	FirstLineIndent bool                  `json:"first_line_indent"`
}

// SizeFor returns the target size in half-points for a level.
func (t *Template) SizeFor(lv classify.Level) int {
	return t.Sizes[lv.Key()]
}

// SpacingFor returns the [before, after] point pair for a level.
func (t *Template) SpacingFor(lv classify.Level) (before, after float64) {
	pair := t.Spacing[lv.Key()]
	return pair[0], pair[1]
}

// Validate rejects templates that would misformat documents: every one of
// the five levels must have a size and a spacing pair, both fonts must be
// set, and the line spacing multiplier must be positive. Called at the
// edit boundary; invalid templates are never stored.
func (t *Template) Validate() error {
	if t.ChineseFont == "" {
		return fmt.Errorf("chinese_font 不能为空")
	}
	if t.WesternFont == "" {
		return fmt.Errorf("western_font 不能为空")
	}
	if t.LineSpacing <= 0 {
		return fmt.Errorf("line_spacing 必须为正数，当前为 %v", t.LineSpacing)
	}
	if len(t.Sizes) != len(classify.Levels) {
		return fmt.Errorf("sizes 必须且只能包含 %d 个层级", len(classify.Levels))
	}
	for _, lv := range classify.Levels {
		sz, ok := t.Sizes[lv.Key()]
		if !ok {
			return fmt.Errorf("sizes 缺少层级 %s", lv.Key())
		}
		if sz <= 0 {
			return fmt.Errorf("层级 %s 的字号必须为正整数，当前为 %d", lv.Key(), sz)
		}
		pair, ok := t.Spacing[lv.Key()]
		if !ok {
			return fmt.Errorf("spacing 缺少层级 %s", lv.Key())
		}
		if pair[0] < 0 || pair[1] < 0 {
			return fmt.Errorf("层级 %s 的段前段后间距不能为负", lv.Key())
		}
	}
	return nil
}

// Clone returns a deep copy, so edits on a form never touch the stored
// template until saved.
func (t *Template) Clone() *Template {
	c := *t
	c.Sizes = make(map[string]int, len(t.Sizes))
	for k, v := range t.Sizes {
		c.Sizes[k] = v
	}
	c.Spacing = make(map[string][2]float64, len(t.Spacing))
	for k, v := range t.Spacing {
		c.Spacing[k] = v
	}
	return &c
}

// DefaultTemplates returns the built-in template set written to a fresh
// config file.
func DefaultTemplates() map[string]*Template {
	return map[string]*Template{
		"通用模板": {
			ChineseFont: "宋体",
			WesternFont: "Times New Roman",
			Sizes: map[string]int{
				"main_title": 32,
				"heading1":   30,
				"heading2":   28,
				"heading3":   24,
				"body":       21,
			},
			LineSpacing: 1.5,
			Spacing: map[string][2]float64{
				"main_title": {24, 12},
				"heading1":   {24, 6},
				"heading2":   {18, 6},
				"heading3":   {12, 6},
				"body":       {0, 0},
			},
			FirstLineIndent: true,
		},
		"学术期刊投稿": {
			ChineseFont: "宋体",
			WesternFont: "Times New Roman",
			Sizes: map[string]int{
				"main_title": 32,
				"heading1":   28,
				"heading2":   26,
				"heading3":   24,
				"body":       24,
			},
			LineSpacing: 2.0,
			Spacing: map[string][2]float64{
				"main_title": {12, 12},
				"heading1":   {12, 6},
				"heading2":   {6, 6},
				"heading3":   {6, 3},
				"body":       {0, 0},
			},
			FirstLineIndent: true,
		},
	}
}
