package matcher

// wildcardMatch reports whether text matches glob pattern pat, where '*'
// matches any run of UCS-4 units (including none) and '?' matches
// exactly one unit.
func wildcardMatch(pat, text []rune) bool {
	return wildcardMatchAt(pat, text)
}

func wildcardMatchAt(pat, text []rune) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			for len(pat) > 0 && pat[0] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(text); i++ {
				if wildcardMatchAt(pat, text[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(text) == 0 {
				return false
			}
			pat, text = pat[1:], text[1:]
		default:
			if len(text) == 0 || text[0] != pat[0] {
				return false
			}
			pat, text = pat[1:], text[1:]
		}
	}
	return len(text) == 0
}
