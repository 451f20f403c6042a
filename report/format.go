package report

import (
	"stutterclock-go/automaton"
	"stutterclock-go/errcode"
	"stutterclock-go/x/strconvx"
)

// MaxLineLen bounds one status line: a ratio of at most "4.000", four 10-digit
// counts, a 20-digit total, separators and CRLF.
const MaxLineLen = 96

// AppendLine appends "<ratio> <c0> <c1> <c2> <c3> <total>\r\n" for s.
// The ratio is 4*c0/total with three decimals, rounded to nearest with exact
// ties to even, matching %.3f. While no
// transition has been counted there is no ratio and errcode.NoData is returned
// with dst unchanged.
func AppendLine(dst []byte, s automaton.Snapshot) ([]byte, error) {
	milli, ok := s.RatioMilli()
	if !ok {
		return dst, errcode.NoData
	}
	dst = strconvx.AppendMilli(dst, milli)
	for _, c := range s.Counts {
		dst = append(dst, ' ')
		dst = strconvx.AppendUint(dst, uint64(c), 10)
	}
	dst = append(dst, ' ')
	dst = strconvx.AppendUint(dst, s.Total(), 10)
	return append(dst, '\r', '\n'), nil
}
