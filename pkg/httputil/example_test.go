package httputil_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/matzehuels/spritestyle/pkg/httputil"
)

func ExampleFetcher() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "reference bytes")
	}))
	defer srv.Close()

	dir, _ := os.MkdirTemp("", "spritestyle-downloads")
	defer os.RemoveAll(dir)

	c, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	body, err := httputil.NewFetcher(c).Fetch(context.Background(), srv.URL+"/hero.png")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(string(body))
	// Output: reference bytes
}
