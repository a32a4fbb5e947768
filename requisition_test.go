package requisition_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adamwoolhether/requisition"
	"github.com/adamwoolhether/requisition/client"
)

func TestFacade_Methods(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Method", r.Method)
	}))
	defer ts.Close()

	testCases := map[string]struct {
		req *client.Request
		exp string
	}{
		"new":     {req: requisition.New("get", ts.URL), exp: http.MethodGet},
		"get":     {req: requisition.Get(ts.URL), exp: http.MethodGet},
		"head":    {req: requisition.Head(ts.URL), exp: http.MethodHead},
		"post":    {req: requisition.Post(ts.URL), exp: http.MethodPost},
		"put":     {req: requisition.Put(ts.URL), exp: http.MethodPut},
		"patch":   {req: requisition.Patch(ts.URL), exp: http.MethodPatch},
		"delete":  {req: requisition.Delete(ts.URL), exp: http.MethodDelete},
		"options": {req: requisition.Options(ts.URL), exp: http.MethodOptions},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp, err := tc.req.Do(t.Context())
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			defer resp.Close()

			if got := resp.Get("X-Method"); got != tc.exp {
				t.Errorf("expected server to see %s, got %q", tc.exp, got)
			}
		})
	}
}

func TestDefaults_Invalid(t *testing.T) {
	_, err := requisition.Defaults(client.Config{Redirects: client.Redirects(-1)})
	if err == nil {
		t.Fatal("expected error for negative redirect default")
	}
}
