package strength

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minLength = 8

	lowercaseChars   = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars       = "0123456789"
	punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var charClasses = []string{
	lowercaseChars,
	uppercaseChars,
	digitChars,
	punctuationChars,
}

// isComplex reports whether the password is long enough and contains a
// character of any of the ASCII character classes. A single class is
// enough, so case mixing is judged separately by isSingleCase.
func isComplex(password string) bool {
	if utf8.RuneCountInString(password) < minLength {
		return false
	}
	for _, class := range charClasses {
		if strings.ContainsAny(password, class) {
			return true
		}
	}
	return false
}

// isSingleCase reports whether every cased letter has the same case.
// Passwords without cased letters are not single-case.
func isSingleCase(password string) bool {
	var hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsTitle(r):
			return false
		}
		if hasLower && hasUpper {
			return false
		}
	}
	return hasLower != hasUpper
}
