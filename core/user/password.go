package user

import (
	"strconv"
	"unicode/utf16"
)

// legacyChecksum is the verifier stored by the first version of the app: a 31-multiplier rolling
// hash over UTF-16 code units, wrapped to 32 bits and printed in base 36.
// It is only used to accept and upgrade old verifiers.
func legacyChecksum(pwd string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(pwd)) {
		hash = (hash << 5) - hash + int32(unit)
	}
	return strconv.FormatInt(int64(hash), 36)
}
