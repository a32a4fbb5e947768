package client

import (
	"mime"
	"strings"
)

const (
	typeJSON = "application/json"
	typeForm = "application/x-www-form-urlencoded"
)

// shortTypes resolves short names and extensions that must not depend on
// the host's mime.types files.
var shortTypes = map[string]string{
	"json":       typeJSON,
	"form":       typeForm,
	"urlencoded": typeForm,
	"html":       "text/html",
	"htm":        "text/html",
	"text":       "text/plain",
	"txt":        "text/plain",
	"xml":        "application/xml",
	"js":         "application/javascript",
	"css":        "text/css",
	"csv":        "text/csv",
	"md":         "text/markdown",
	"yaml":       "application/yaml",
	"yml":        "application/yaml",
	"png":        "image/png",
	"jpg":        "image/jpeg",
	"jpeg":       "image/jpeg",
	"gif":        "image/gif",
	"svg":        "image/svg+xml",
	"pdf":        "application/pdf",
	"zip":        "application/zip",
	"gz":         "application/gzip",
	"bin":        "application/octet-stream",
}

// lookupType resolves a short name ("json"), an extension (".json") or a
// file name ("data.json") to a bare media type. A value containing "/"
// is returned unchanged.
func lookupType(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.Contains(name, "/") {
		return name, true
	}

	ext := strings.ToLower(name)
	if i := strings.LastIndexByte(ext, '.'); i >= 0 {
		ext = ext[i+1:]
	}
	if t, ok := shortTypes[ext]; ok {
		return t, true
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt, true
		}
		return t, true
	}

	return "", false
}

// contentType is lookupType plus a utf-8 charset for textual types that
// do not declare one.
func contentType(name string) (string, bool) {
	t, ok := lookupType(name)
	if !ok {
		return "", false
	}
	if strings.Contains(t, "charset=") {
		return t, true
	}

	mt := t
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case strings.HasPrefix(mt, "text/"), mt == typeJSON, mt == "application/javascript":
		return t + "; charset=utf-8", true
	}

	return t, true
}

// mediaType returns the lower-cased "type/subtype" of a Content-Type value.
func mediaType(value string) string {
	if value == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		mt, _, _ = strings.Cut(value, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}

	return mt
}

func subtype(value string) string {
	_, sub, _ := strings.Cut(mediaType(value), "/")
	return sub
}

// normalizeTarget expands an [Response.Is] target to a media type pattern.
func normalizeTarget(target string) string {
	switch target {
	case "":
		return ""
	case "urlencoded":
		return typeForm
	case "multipart":
		return "multipart/*"
	}
	if target[0] == '+' {
		return "*/*" + target
	}
	if strings.Contains(target, "/") {
		return mediaType(target)
	}

	t, _ := lookupType(target)
	return t
}

// mimeMatch reports whether actual matches the expected pattern, which
// may use "*" for the type or subtype and "*+suffix" subtypes.
func mimeMatch(expected, actual string) bool {
	expType, expSub, ok := strings.Cut(expected, "/")
	if !ok {
		return false
	}
	actType, actSub, ok := strings.Cut(actual, "/")
	if !ok {
		return false
	}

	if expType != "*" && expType != actType {
		return false
	}

	if strings.HasPrefix(expSub, "*+") {
		suffix := expSub[1:]
		return len(actSub) > len(suffix) && strings.HasSuffix(actSub, suffix)
	}

	return expSub == "*" || expSub == actSub
}
