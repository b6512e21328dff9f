package layout

import "testing"

func blockOf(n, lineHeight int, face Face, text string) Block {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = text
	}
	return Block{Lines: LineBlock{Lines: lines, LineHeight: lineHeight}, Face: face}
}

func TestPlaceCenteredSymmetricOverflow(t *testing.T) {
	face := stubFace{unit: 10, height: 15}
	blocks := []Block{blockOf(23, 20, face, "x")}
	start, lines, overflow := PlaceCentered(blocks, Region{Width: 800, Height: 400}, nil)
	if start.Y != -30 {
		t.Fatalf("期望 start_y -30，实际 %d", start.Y)
	}
	if !overflow {
		t.Fatalf("460 > 400 应标记溢出")
	}
	if len(lines) != 23 || lines[0].Y != -30 || lines[22].Y != -30+22*20 {
		t.Fatalf("逐行位置错误: first=%d last=%d", lines[0].Y, lines[len(lines)-1].Y)
	}
}

// TestPlaceCenteredSymmetry 断言：start_y 与 start_y+N*h 关于区域中线对称（误差 ≤ 1px）。
func TestPlaceCenteredSymmetry(t *testing.T) {
	face := stubFace{unit: 10, height: 15}
	for _, region := range []Region{{Y: 0, Width: 800, Height: 480}, {Y: 37, Width: 600, Height: 301}} {
		for n := 0; n <= 30; n++ {
			for _, h := range []int{17, 29} {
				start, _, overflow := PlaceCentered([]Block{blockOf(n, h, face, "x")}, region, nil)
				top := start.Y - region.Y
				bottom := region.Y + region.Height - (start.Y + n*h)
				if d := top - bottom; d < -1 || d > 1 {
					t.Fatalf("n=%d h=%d region=%+v: 上方 %d 下方 %d 不对称", n, h, region, top, bottom)
				}
				if overflow != (n*h > region.Height) {
					t.Fatalf("n=%d h=%d: 溢出标记错误", n, h)
				}
			}
		}
	}
}

func TestPlaceCenteredCentersEachLine(t *testing.T) {
	face := stubFace{unit: 10, height: 15}
	blocks := []Block{
		{Lines: LineBlock{Lines: []string{"John 3:16"}, LineHeight: 20}, Face: face},
		{Lines: LineBlock{Lines: []string{"For God so loved", "", "the world"}, LineHeight: 25}, Face: face},
	}
	region := Region{X: 100, Y: 0, Width: 600, Height: 480}
	start, lines, overflow := PlaceCentered(blocks, region, []int{40})
	if overflow {
		t.Fatalf("不应溢出")
	}
	// 20 + 40 + 3*25 = 135
	if want := floorDiv(480-135, 2); start.Y != want {
		t.Fatalf("期望 start_y %d，实际 %d", want, start.Y)
	}
	want := []LinePlacement{
		{Block: 0, Index: 0, Text: "John 3:16", Width: 90, Placement: Placement{X: 100 + 255, Y: 172}},
		{Block: 1, Index: 0, Text: "For God so loved", Width: 160, Placement: Placement{X: 100 + 220, Y: 232}},
		{Block: 1, Index: 1, Text: "", Width: 0, Placement: Placement{X: 100 + 300, Y: 257}},
		{Block: 1, Index: 2, Text: "the world", Width: 90, Placement: Placement{X: 100 + 255, Y: 282}},
	}
	if len(lines) != len(want) {
		t.Fatalf("期望 %d 行，实际 %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("第 %d 行: 期望 %+v，实际 %+v", i, want[i], lines[i])
		}
	}
}

func TestStackHeightMissingGaps(t *testing.T) {
	face := stubFace{unit: 1, height: 1}
	blocks := []Block{blockOf(2, 10, face, "a"), blockOf(1, 10, face, "b"), blockOf(1, 10, face, "c")}
	if got := StackHeight(blocks, []int{5}); got != 45 {
		t.Fatalf("缺省间距应视为 0，期望 45，实际 %d", got)
	}
}

func TestFloorDiv(t *testing.T) {
	cases := [][3]int{{-60, 2, -30}, {-61, 2, -31}, {61, 2, 30}, {0, 2, 0}, {-1, 2, -1}}
	for _, c := range cases {
		if got := floorDiv(c[0], c[1]); got != c[2] {
			t.Fatalf("floorDiv(%d,%d) = %d, want %d", c[0], c[1], got, c[2])
		}
	}
}
