package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/requisition/client"
)

func ExampleBuild() {
	c, err := client.Build(
		client.WithUserAgent("example/1.0"),
		client.WithDefaults(client.Config{Timeout: 10 * time.Second}),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(c.Defaults().Timeout)
	// Output: 10s
}

func ExampleClient_Get() {
	c, _ := client.Build()

	req := c.Get("https://example.com/search").
		Query(map[string]string{"q": "gopher"}).
		Set("X-Request-ID", "abc123")

	fmt.Println(req.Method(), req.URL())
	fmt.Println(req.Header().Get("X-Request-ID"))
	// Output:
	// GET https://example.com/search?q=gopher
	// abc123
}

func ExampleRequest_Do() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer ts.Close()

	c, _ := client.Build()

	resp, err := c.Get(ts.URL).Do(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	var body struct{ Status string }
	if err := resp.JSON(&body); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(resp.StatusCode, body.Status)
	// Output: 200 ok
}

func ExampleRequest_Send() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		fmt.Fprint(w, r.Header.Get("Content-Type"), " ", r.PostForm.Get("name"), " ", r.PostForm.Get("lang"))
	}))
	defer ts.Close()

	c, _ := client.Build()

	resp, err := c.Post(ts.URL).
		Send("name=gopher").
		Send("lang=go").
		Do(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	text, _ := resp.Text()
	fmt.Println(text)
	// Output: application/x-www-form-urlencoded gopher go
}

func ExampleResponse_Is() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"title":"bad"}`)
	}))
	defer ts.Close()

	c, _ := client.Build()
	resp, _ := c.Get(ts.URL).Do(context.Background())
	defer resp.Close()

	fmt.Println(resp.Is("json"))
	fmt.Println(resp.Is("+json"))
	// Output:
	// false
	// application/problem+json true
}

func ExampleRequest_Start() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "done")
	}))
	defer ts.Close()

	c, _ := client.Build()

	req := c.Get(ts.URL).Start(context.Background())
	// ... do other work ...
	<-req.Done()

	resp, err := req.Result()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	text, _ := resp.Text()
	fmt.Println(text)
	// Output: done
}
