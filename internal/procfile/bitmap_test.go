package procfile

import "testing"

func TestParseBitmapTruncatesLeadingGroups(t *testing.T) {
	// B3: fewer target slots than source groups truncates the
	// most-significant (leftmost) groups.
	target := make([]uint32, 2)
	ParseBitmap("ffffffff,00000000,00000001", target)
	if target[0] != 0x1 || target[1] != 0x0 {
		t.Fatalf("target = %#x, want [0x1, 0x0]", target)
	}
}

func TestParseBitmapExactFit(t *testing.T) {
	target := make([]uint32, 3)
	ParseBitmap("000000ff,00000000,0000000a", target)
	want := []uint32{0xa, 0x0, 0xff}
	for i := range want {
		if target[i] != want[i] {
			t.Fatalf("target = %#x, want %#x", target, want)
		}
	}
}

func TestParseBitmapSingleGroup(t *testing.T) {
	target := make([]uint32, 4)
	ParseBitmap("3", target)
	if target[0] != 3 {
		t.Fatalf("target[0] = %#x, want 3", target[0])
	}
	for _, v := range target[1:] {
		if v != 0 {
			t.Fatalf("target = %#x, want zero padding", target)
		}
	}
}
