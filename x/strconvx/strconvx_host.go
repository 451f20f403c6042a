//go:build !rp2040

package strconvx

import "strconv"

// Host builds delegate straight through to strconv.

func Itoa(i int) string                    { return strconv.Itoa(i) }
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }
func AppendUint(dst []byte, u uint64, base int) []byte {
	return strconv.AppendUint(dst, u, base)
}
func ParseUint(s string, base, bitSize int) (uint64, error) {
	return strconv.ParseUint(s, base, bitSize)
}
