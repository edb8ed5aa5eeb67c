package respond

import (
	"regexp"
)

var (
	// URL内の認証情報
	userinfoPattern = regexp.MustCompile(`://([^:/@\s]+):([^@/\s]+)@`)

	// クエリ文字列（トークン等を含み得る）
	queryPattern = regexp.MustCompile(`(https?://[^\s?"]+)\?[^\s"]*`)
)

// SanitizeError returns err's message with URL credentials and query strings masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = userinfoPattern.ReplaceAllString(msg, "://$1:****@")
	msg = queryPattern.ReplaceAllString(msg, "$1?****")

	return msg
}
