package scene

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, invalidf("colour %q must start with #", s)
	}
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return color.NRGBA{}, invalidf("colour %q has bad length", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, invalidf("colour %q is not hexadecimal", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor renders c as "#rrggbb", or "#rrggbbaa" when not opaque.
func FormatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return "#" + hex2(n.R) + hex2(n.G) + hex2(n.B)
	}
	return "#" + hex2(n.R) + hex2(n.G) + hex2(n.B) + hex2(n.A)
}

func hex2(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
