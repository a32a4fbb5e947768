package client

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLinks(t *testing.T) {
	base, _ := url.Parse("https://api.example.com/v1/items?page=1")

	testCases := map[string]struct {
		values []string
		base   *url.URL
		exp    map[string]string
	}{
		"githubStyle": {
			values: []string{`<https://api.example.com/v1/items?page=2>; rel="next", <https://api.example.com/v1/items?page=5>; rel="last"`},
			exp: map[string]string{
				"next": "https://api.example.com/v1/items?page=2",
				"last": "https://api.example.com/v1/items?page=5",
			},
		},
		"multipleRels": {
			values: []string{`<https://example.com/a>; rel="prev first"`},
			exp: map[string]string{
				"prev":  "https://example.com/a",
				"first": "https://example.com/a",
			},
		},
		"unquotedAndCase": {
			values: []string{`<https://example.com/n>; REL=Next`},
			exp:    map[string]string{"next": "https://example.com/n"},
		},
		"commaInParam": {
			values: []string{`<https://example.com/x>; title="a, b"; rel="alternate", <https://example.com/y>; rel=self`},
			exp: map[string]string{
				"alternate": "https://example.com/x",
				"self":      "https://example.com/y",
			},
		},
		"relativeResolved": {
			values: []string{`<?page=3>; rel="next", </root>; rel="up"`},
			base:   base,
			exp: map[string]string{
				"next": "https://api.example.com/v1/items?page=3",
				"up":   "https://api.example.com/root",
			},
		},
		"firstWins": {
			values: []string{`<https://example.com/1>; rel=next`, `<https://example.com/2>; rel=next`},
			exp:    map[string]string{"next": "https://example.com/1"},
		},
		"noRel":     {values: []string{`<https://example.com/1>; title="x"`}, exp: map[string]string{}},
		"malformed": {values: []string{`https://example.com/1; rel=next`, `<unterminated; rel=next`}, exp: map[string]string{}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := parseLinks(tc.values, tc.base)
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("links mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
