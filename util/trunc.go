// Package util contains small string helpers shared by the CLI.
package util

// TruncateRight keeps the first n runes of text.
func TruncateRight(text string, n int) string {
	return TruncateRightWithSuffix(text, n, "")
}

// TruncateRightWithSuffix keeps the first n runes of text and only appends the suffix if truncation happens.
func TruncateRightWithSuffix(text string, n int, suffix string) string {
	if n <= 0 {
		return suffix
	}

	rs := make([]rune, 0, n)
	for _, r := range text {
		if len(rs) >= n {
			return string(rs) + suffix
		}

		rs = append(rs, r)
	}

	return string(rs)
}
