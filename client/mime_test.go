package client

import "testing"

func TestContentType(t *testing.T) {
	testCases := map[string]struct {
		name  string
		exp   string
		expOK bool
	}{
		"short":        {name: "json", exp: "application/json; charset=utf-8", expOK: true},
		"form":         {name: "form", exp: typeForm, expOK: true},
		"extension":    {name: ".html", exp: "text/html; charset=utf-8", expOK: true},
		"fileName":     {name: "photo.PNG", exp: "image/png", expOK: true},
		"fullType":     {name: "application/xml", exp: "application/xml", expOK: true},
		"fullTextType": {name: "text/csv", exp: "text/csv; charset=utf-8", expOK: true},
		"keepsCharset": {name: "text/plain; charset=latin1", exp: "text/plain; charset=latin1", expOK: true},
		"javascript":   {name: "js", exp: "application/javascript; charset=utf-8", expOK: true},
		"unknown":      {name: "definitely-unknown"},
		"empty":        {name: ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := contentType(tc.name)
			if ok != tc.expOK || got != tc.exp {
				t.Errorf("expected (%q, %v), got (%q, %v)", tc.exp, tc.expOK, got, ok)
			}
		})
	}
}

func TestMimeMatch(t *testing.T) {
	testCases := map[string]struct {
		expected string
		actual   string
		exp      bool
	}{
		"exact":            {expected: "text/html", actual: "text/html", exp: true},
		"typeWildcard":     {expected: "*/html", actual: "text/html", exp: true},
		"subtypeWildcard":  {expected: "image/*", actual: "image/png", exp: true},
		"suffix":           {expected: "*/*+json", actual: "application/problem+json", exp: true},
		"suffixOnlyFails":  {expected: "*/*+json", actual: "application/+json"},
		"suffixMissing":    {expected: "application/*+xml", actual: "application/json"},
		"differentType":    {expected: "text/html", actual: "image/html"},
		"malformedActual":  {expected: "text/html", actual: "texthtml"},
		"malformedPattern": {expected: "html", actual: "text/html"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := mimeMatch(tc.expected, tc.actual); got != tc.exp {
				t.Errorf("mimeMatch(%q, %q) = %v, want %v", tc.expected, tc.actual, got, tc.exp)
			}
		})
	}
}
