package layout

import "strings"

// DefaultLineSpacing 是行高在参考字形高度之上额外增加的像素。
const DefaultLineSpacing = 5

// lineProbe 用于计算统一行高的参考字形。
const lineProbe = "Ay"

// LineBlock 是一段文本折行后的结果。空字符串表示段落之间的分隔行。
type LineBlock struct {
	Lines      []string `json:"lines"`
	LineHeight int      `json:"lineHeight"`
}

// Count 返回行数（包含分隔行）。
func (b LineBlock) Count() int { return len(b.Lines) }

// Height 返回整个块占用的高度。
func (b LineBlock) Height() int { return len(b.Lines) * b.LineHeight }

// LineHeightOf 返回 face 的统一行高：参考字形高度加 spacing，只计算一次。
func LineHeightOf(face Face, spacing int) int {
	_, h := face.Measure(lineProbe)
	return h + spacing
}

// Wrap 以贪心方式按单词折行：候选行（当前行 + 空格 + 单词）测得宽度不超过
// maxWidth 时接受，否则结束当前行并以该单词开始新行。单个超宽单词独占一行，
// 不在单词内部断开。每段结束后追加一个空分隔行，最后一段的分隔行会被移除。
func Wrap(text string, maxWidth int, face Face, spacing int) LineBlock {
	block := LineBlock{LineHeight: LineHeightOf(face, spacing)}
	if text == "" {
		return block
	}

	text = strings.ReplaceAll(text, "\r", "")
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		current := ""
		for _, word := range strings.Fields(paragraph) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if w, _ := face.Measure(candidate); w <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = word
		}
		if current != "" {
			lines = append(lines, current)
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	block.Lines = lines
	return block
}
