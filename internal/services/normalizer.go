package services

import (
	"regexp"
	"strings"
)

// toneMap folds every Vietnamese diacritic-bearing letter to its base
// Latin letter. Case is preserved.
var toneMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'ạ': 'a', 'ả': 'a', 'ã': 'a', 'â': 'a', 'ầ': 'a',
	'ấ': 'a', 'ậ': 'a', 'ẩ': 'a', 'ẫ': 'a', 'ă': 'a', 'ằ': 'a', 'ắ': 'a',
	'ặ': 'a', 'ẳ': 'a', 'ẵ': 'a', 'è': 'e', 'é': 'e', 'ẹ': 'e', 'ẻ': 'e',
	'ẽ': 'e', 'ê': 'e', 'ề': 'e', 'ế': 'e', 'ệ': 'e', 'ể': 'e', 'ễ': 'e',
	'ì': 'i', 'í': 'i', 'ị': 'i', 'ỉ': 'i', 'ĩ': 'i', 'ò': 'o', 'ó': 'o',
	'ọ': 'o', 'ỏ': 'o', 'õ': 'o', 'ô': 'o', 'ồ': 'o', 'ố': 'o', 'ộ': 'o',
	'ổ': 'o', 'ỗ': 'o', 'ơ': 'o', 'ờ': 'o', 'ớ': 'o', 'ợ': 'o', 'ở': 'o',
	'ỡ': 'o', 'ù': 'u', 'ú': 'u', 'ụ': 'u', 'ủ': 'u', 'ũ': 'u', 'ư': 'u',
	'ừ': 'u', 'ứ': 'u', 'ự': 'u', 'ử': 'u', 'ữ': 'u', 'ỳ': 'y', 'ý': 'y',
	'ỵ': 'y', 'ỷ': 'y', 'ỹ': 'y', 'đ': 'd', 'À': 'A', 'Á': 'A', 'Ạ': 'A',
	'Ả': 'A', 'Ã': 'A', 'Â': 'A', 'Ầ': 'A', 'Ấ': 'A', 'Ậ': 'A', 'Ẩ': 'A',
	'Ẫ': 'A', 'Ă': 'A', 'Ằ': 'A', 'Ắ': 'A', 'Ặ': 'A', 'Ẳ': 'A', 'Ẵ': 'A',
	'È': 'E', 'É': 'E', 'Ẹ': 'E', 'Ẻ': 'E', 'Ẽ': 'E', 'Ê': 'E', 'Ề': 'E',
	'Ế': 'E', 'Ệ': 'E', 'Ể': 'E', 'Ễ': 'E', 'Ì': 'I', 'Í': 'I', 'Ị': 'I',
	'Ỉ': 'I', 'Ĩ': 'I', 'Ò': 'O', 'Ó': 'O', 'Ọ': 'O', 'Ỏ': 'O', 'Õ': 'O',
	'Ô': 'O', 'Ồ': 'O', 'Ố': 'O', 'Ộ': 'O', 'Ổ': 'O', 'Ỗ': 'O', 'Ơ': 'O',
	'Ờ': 'O', 'Ớ': 'O', 'Ợ': 'O', 'Ở': 'O', 'Ỡ': 'O', 'Ù': 'U', 'Ú': 'U',
	'Ụ': 'U', 'Ủ': 'U', 'Ũ': 'U', 'Ư': 'U', 'Ừ': 'U', 'Ứ': 'U', 'Ự': 'U',
	'Ử': 'U', 'Ữ': 'U', 'Ỳ': 'Y', 'Ý': 'Y', 'Ỵ': 'Y', 'Ỷ': 'Y', 'Ỹ': 'Y',
	'Đ': 'D',
}

// vietnameseFunctionWords is the fixed diacritic-stripped function-word
// list used by the >30% token-ratio language heuristic.
var vietnameseFunctionWords = map[string]bool{
	"xin": true, "chao": true, "ban": true, "anh": true, "chi": true, "em": true,
	"khoe": true, "khong": true, "the": true, "nao": true, "hom": true, "nay": true,
	"buoi": true, "sang": true, "chieu": true, "toi": true, "vui": true, "duoc": true,
	"gap": true, "chuc": true, "ngay": true, "tot": true, "lanh": true, "rat": true,
	"giao": true, "thong": true, "luat": true, "phat": true, "vi": true, "pham": true,
	"muc": true, "tien": true, "dong": true, "bao": true, "nhieu": true, "den": true,
	"do": true, "vuot": true, "cham": true, "toc": true, "doi": true, "mu": true,
	"hiem": true,
}

var nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// Normalize strips Vietnamese tone marks and diacritics for tolerant
// matching. Idempotent: normalizing already-plain text is a no-op.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if base, ok := toneMap[r]; ok {
			b.WriteRune(base)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsVietnamese reports whether text is primarily Vietnamese: it contains
// any diacritic letter, or more than 30% of its tokens are common
// Vietnamese function words typed without tone marks.
func IsVietnamese(text string) bool {
	for _, r := range text {
		if _, ok := toneMap[r]; ok {
			return true
		}
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	count := 0
	for _, w := range words {
		if vietnameseFunctionWords[nonWordChars.ReplaceAllString(w, "")] {
			count++
		}
	}
	return count > 0 && float64(count)/float64(len(words)) > 0.3
}
