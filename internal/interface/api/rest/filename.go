package rest

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxAttachmentBase = 100
	fallbackFileName  = "file"
)

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// asciiFileName folds a stored name into a quoted-string safe ASCII name.
// Accents are stripped, anything else outside [A-Za-z0-9._-] becomes '_'.
func asciiFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return fallbackFileName
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if s, _, err := transform.String(t, name); err == nil {
		name = s
	}

	ext := path.Ext(name)
	base := fold(strings.TrimSuffix(name, ext))
	ext = strings.ToLower(fold(strings.TrimPrefix(ext, ".")))
	if ext != "" {
		ext = "." + ext
	}

	if base == "" {
		base = fallbackFileName
	}
	if _, bad := windowsReserved[strings.ToLower(base)]; bad {
		base = "_" + base
	}
	if len(base) > maxAttachmentBase {
		base = base[:maxAttachmentBase]
	}

	return base + ext
}

func fold(s string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastSep = false
		case r == '-' || r == '.':
			b.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
	}
	return strings.Trim(b.String(), "_.")
}

// contentDisposition builds an attachment header carrying both the ASCII
// fallback and the exact UTF-8 name (RFC 5987).
func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, asciiFileName(name), encodeExtValue(name))
}

func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
