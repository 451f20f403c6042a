//go:build rp2040

package strconvx

// Minimal, allocation-aware helpers with strconv signatures.
// Supported bases: 2..36.

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func Itoa(i int) string {
	if i < 0 {
		return "-" + FormatUint(uint64(-i), 10)
	}
	return FormatUint(uint64(i), 10)
}

func FormatUint(u uint64, base int) string {
	var buf [64]byte
	return string(AppendUint(buf[:0], u, base))
}

func AppendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return append(dst, '0')
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return append(dst, buf[i:]...)
}

type parseError struct{}

func (parseError) Error() string { return "invalid syntax" }

type rangeError struct{}

func (rangeError) Error() string { return "value out of range" }

// ParseUint accepts base 0 (0x/0o/0b prefixes) like strconv.
func ParseUint(s string, base, bitSize int) (uint64, error) {
	if base == 0 {
		base = 10
		if len(s) > 2 && s[0] == '0' {
			switch s[1] {
			case 'x', 'X':
				base, s = 16, s[2:]
			case 'o', 'O':
				base, s = 8, s[2:]
			case 'b', 'B':
				base, s = 2, s[2:]
			}
		}
	}
	if s == "" || base < 2 || base > 36 {
		return 0, parseError{}
	}
	if bitSize <= 0 || bitSize > 64 {
		bitSize = 64
	}
	max := uint64(1)<<uint(bitSize) - 1
	if bitSize == 64 {
		max = ^uint64(0)
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d byte
		switch {
		case '0' <= c && c <= '9':
			d = c - '0'
		case 'a' <= c && c <= 'z':
			d = c - 'a' + 10
		case 'A' <= c && c <= 'Z':
			d = c - 'A' + 10
		case c == '_':
			continue
		default:
			return 0, parseError{}
		}
		if int(d) >= base {
			return 0, parseError{}
		}
		if n > (max-uint64(d))/uint64(base) {
			return max, rangeError{}
		}
		n = n*uint64(base) + uint64(d)
	}
	return n, nil
}
