package strconvx

// AppendMilli appends v/1000 with exactly three decimals ("2000" -> "2.000").
func AppendMilli(dst []byte, v uint64) []byte {
	dst = AppendUint(dst, v/1000, 10)
	frac := v % 1000
	return append(dst, '.', byte('0'+frac/100), byte('0'+frac/10%10), byte('0'+frac%10))
}
