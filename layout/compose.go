package layout

// Region 是文本区域，坐标为像素。
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Block 将折行结果与测量它所用的 Face 绑定在一起。
type Block struct {
	Lines LineBlock
	Face  Face
}

// Placement 是元素左上角坐标。
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LinePlacement 记录一行文本的位置。分隔行的 Text 为空，但仍然占据高度。
type LinePlacement struct {
	Block int
	Index int
	Text  string
	Width int
	Placement
}

// StackHeight 返回所有块的行高之和加上块间距。gaps[i] 位于第 i 与第 i+1 个块之间，
// 缺省视为 0。
func StackHeight(blocks []Block, gaps []int) int {
	total := 0
	for i, b := range blocks {
		total += b.Lines.Height()
		if i > 0 && i-1 < len(gaps) {
			total += gaps[i-1]
		}
	}
	return total
}

// PlaceCentered 将若干块整体垂直居中于 region，每行按自身宽度水平居中。
// 返回整体起点、逐行位置，以及总高度是否超出区域；超出时向上下对称溢出，不做裁剪。
func PlaceCentered(blocks []Block, region Region, gaps []int) (Placement, []LinePlacement, bool) {
	total := StackHeight(blocks, gaps)
	start := Placement{X: region.X, Y: region.Y + floorDiv(region.Height-total, 2)}

	var out []LinePlacement
	y := start.Y
	for bi, b := range blocks {
		if bi > 0 && bi-1 < len(gaps) {
			y += gaps[bi-1]
		}
		for li, text := range b.Lines.Lines {
			width := 0
			if text != "" {
				width, _ = b.Face.Measure(text)
			}
			out = append(out, LinePlacement{
				Block: bi,
				Index: li,
				Text:  text,
				Width: width,
				Placement: Placement{
					X: region.X + floorDiv(region.Width-width, 2),
					Y: y,
				},
			})
			y += b.Lines.LineHeight
		}
	}
	return start, out, total > region.Height
}

// floorDiv 向负无穷取整，使溢出时的起点与整数除法一致（-60/2 = -30，-61/2 = -31）。
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
