package classify

// Level is the structural role assigned to a paragraph.
type Level int

const (
	MainTitle Level = iota
	Heading1
	Heading2
	Heading3
	Body
)

// Levels lists every level in template-key order.
var Levels = []Level{MainTitle, Heading1, Heading2, Heading3, Body}

// Key returns the template/config key for the level.
func (l Level) Key() string {
	switch l {
	case MainTitle:
		return "main_title"
	case Heading1:
		return "heading1"
	case Heading2:
		return "heading2"
	case Heading3:
		return "heading3"
	default:
		return "body"
	}
}

// Label returns the human-readable name used in progress logs and reports.
func (l Level) Label() string {
	switch l {
	case MainTitle:
		return "主标题"
	case Heading1:
		return "一级标题"
	case Heading2:
		return "二级标题"
	case Heading3:
		return "三级标题"
	default:
		return "正文"
	}
}

func (l Level) String() string { return l.Key() }
