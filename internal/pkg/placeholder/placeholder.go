package placeholder

import "strings"

const (
	tokenOpen  = "<!--"
	tokenClose = "-->"
)

// Render substitutes placeholder tokens of the form <!--key--> in doc with
// the matching value from fields.
//
// The document is scanned once, left to right. Tokens whose key has no entry
// in fields are written back verbatim, so templates may carry optional fields
// without failing a render. Rendering is pure: the same doc and fields always
// produce the same output.
func Render(doc string, fields map[string]string) string {
	if doc == "" || len(fields) == 0 {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc))

	rest := doc
	for {
		open := strings.Index(rest, tokenOpen)
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}

		length := strings.Index(rest[open+len(tokenOpen):], tokenClose)
		if length < 0 {
			b.WriteString(rest)
			return b.String()
		}

		key := rest[open+len(tokenOpen) : open+len(tokenOpen)+length]
		end := open + len(tokenOpen) + length + len(tokenClose)

		b.WriteString(rest[:open])
		if value, ok := fields[key]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(rest[open:end])
		}

		rest = rest[end:]
	}
}

// Tokens returns the placeholder keys present in doc, in order of first
// appearance, without duplicates.
func Tokens(doc string) []string {
	var keys []string
	seen := make(map[string]struct{})

	rest := doc
	for {
		open := strings.Index(rest, tokenOpen)
		if open < 0 {
			return keys
		}

		length := strings.Index(rest[open+len(tokenOpen):], tokenClose)
		if length < 0 {
			return keys
		}

		key := rest[open+len(tokenOpen) : open+len(tokenOpen)+length]
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}

		rest = rest[open+len(tokenOpen)+length+len(tokenClose):]
	}
}
