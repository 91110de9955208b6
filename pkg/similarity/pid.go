package similarity

const gapChar = '-'

// PercentIdentity compares two aligned rows of equal length. Columns where
// both rows hold a gap are skipped; the result is identical residues over the
// remaining columns, or 0 when there are none.
func PercentIdentity(a, b string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	identical, compared := 0, 0
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == gapChar && cb == gapChar {
			continue
		}
		compared++
		if ca == cb && ca != gapChar {
			identical++
		}
	}
	if compared == 0 {
		return 0
	}
	return float64(identical) / float64(compared)
}
