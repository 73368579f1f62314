package api

import (
	"mime"
	"strings"
)

// contentDisposition keeps an ASCII fallback name and the exact UTF-8 name.
func contentDisposition(fileName string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, fileName)
	value := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if value == "" || !strings.Contains(value, "filename*=") {
		return `attachment; filename="` + fallback + `"`
	}
	return value + `; filename="` + fallback + `"`
}
