package console

const maxDecimal = 1<<31 - 1

// Atoi converts the leading decimal digits of s, with an optional sign,
// and returns 0 when there are none.
func Atoi(s string) int {
	n, _ := parseDecimal(s, false)
	return n
}

// ParseDecimal converts s which must be entirely a decimal integer with an
// optional sign. ok is false for anything else, including values beyond
// 32 bits.
func ParseDecimal(s string) (n int, ok bool) {
	return parseDecimal(s, true)
}

func parseDecimal(s string, strict bool) (int, bool) {
	i, neg := 0, false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	n, digits := 0, 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		digits++
		if n > (maxDecimal-d)/10 {
			if strict {
				return 0, false
			}
			n = maxDecimal
			continue
		}
		n = n*10 + d
	}
	if digits == 0 || (strict && i < len(s)) {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
