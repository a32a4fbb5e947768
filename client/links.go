package client

import (
	"net/url"
	"strings"
)

// parseLinks parses RFC 8288 Link header values into a map of relation
// type to target. A link with several space-separated relations is
// stored under each of them; the first link for a relation wins.
// Relative targets are resolved against base when it is non-nil.
func parseLinks(values []string, base *url.URL) map[string]string {
	links := make(map[string]string)

	for _, v := range values {
		for {
			v = strings.TrimLeft(v, " \t,")
			if !strings.HasPrefix(v, "<") {
				break
			}
			end := strings.IndexByte(v, '>')
			if end < 0 {
				break
			}
			target := strings.TrimSpace(v[1:end])
			v = v[end+1:]

			var params string
			params, v = splitLinkParams(v)

			rel := linkParam(params, "rel")
			if rel == "" {
				continue
			}
			if base != nil {
				if u, err := base.Parse(target); err == nil {
					target = u.String()
				}
			}
			for _, r := range strings.Fields(strings.ToLower(rel)) {
				if _, ok := links[r]; !ok {
					links[r] = target
				}
			}
		}
	}

	return links
}

// splitLinkParams returns the parameter section of one link value and
// the remaining input after it. Commas inside quoted strings do not
// end the section.
func splitLinkParams(s string) (string, string) {
	var quoted bool
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				return s[:i], s[i+1:]
			}
		}
	}

	return s, ""
}

func linkParam(params, name string) string {
	for p := range strings.SplitSeq(params, ";") {
		k, v, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), name) {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
			v = strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
		}
		return v
	}

	return ""
}
