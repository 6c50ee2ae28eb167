package procfile

import "strconv"

// ParseBitmap parses a kernel-printed bitmap line of comma-separated
// 32-bit hex groups, high-to-low in the source text, into a
// little-endian target array (index 0 = low word). It scans the
// string right-to-left, filling target indices ascending, and
// truncates the most-significant (leftmost) groups if target is
// shorter than the source has groups (B3).
func ParseBitmap(line string, target []uint32) {
	rest := line
	for i := 0; i < len(target) && rest != ""; i++ {
		comma := -1
		for j := len(rest) - 1; j >= 0; j-- {
			if rest[j] == ',' {
				comma = j
				break
			}
		}
		var group string
		if comma < 0 {
			group = rest
			rest = ""
		} else {
			group = rest[comma+1:]
			rest = rest[:comma]
		}
		v, _ := strconv.ParseUint(group, 16, 32)
		target[i] = uint32(v)
	}
}
