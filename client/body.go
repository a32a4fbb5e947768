package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
)

// structured converts the keyed body kinds accepted by [Request.Send]
// into a map that can be merged and serialised.
func structured(body any) (map[string]any, bool) {
	switch b := body.(type) {
	case map[string]any:
		return b, true
	case map[string]string:
		m := make(map[string]any, len(b))
		for k, v := range b {
			m[k] = v
		}
		return m, true
	case url.Values:
		m := make(map[string]any, len(b))
		for k, v := range b {
			m[k] = v
		}
		return m, true
	}

	return nil, false
}

// mergeBody applies the body rules of [Request.Send] and returns the new
// body together with the content type it implies, if any.
func mergeBody(prev, next any, ctype string) (any, string) {
	if m, ok := structured(next); ok {
		if p, ok := prev.(map[string]any); ok {
			maps.Copy(p, m)
			return p, ctype
		}
		return maps.Clone(m), ctype
	}

	s, ok := next.(string)
	if !ok {
		return next, ctype
	}

	if ctype == "" {
		ctype = typeForm
	}
	p, _ := prev.(string)
	switch {
	case subtype(ctype) == "x-www-form-urlencoded" && p != "":
		s = p + "&" + s
	case subtype(ctype) != "x-www-form-urlencoded":
		s = p + s
	}

	return s, ctype
}

// encodeBody serialises body for ctype. The returned length is -1 when
// it cannot be known before streaming.
func encodeBody(body any, ctype string) (io.Reader, int64, error) {
	form := subtype(ctype) == "x-www-form-urlencoded"

	switch b := body.(type) {
	case nil:
		return http.NoBody, 0, nil
	case []byte:
		return bytes.NewReader(b), int64(len(b)), nil
	case string:
		return strings.NewReader(b), int64(len(b)), nil
	case io.Reader:
		return b, -1, nil
	case map[string]any:
		if form {
			s := formEncode(b)
			return strings.NewReader(s), int64(len(s)), nil
		}
	default:
		if form {
			return nil, 0, fmt.Errorf("%w: cannot urlencode body of type %T", ErrEncode, body)
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return bytes.NewReader(data), int64(len(data)), nil
}

func formEncode(m map[string]any) string {
	values := url.Values{}
	for k, v := range m {
		switch vv := v.(type) {
		case nil:
			values.Add(k, "")
		case string:
			values.Add(k, vv)
		case []string:
			for _, s := range vv {
				values.Add(k, s)
			}
		case []any:
			for _, e := range vv {
				values.Add(k, fmt.Sprint(e))
			}
		default:
			values.Add(k, fmt.Sprint(vv))
		}
	}

	return values.Encode()
}
