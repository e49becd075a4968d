package collage

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestHTTPLoader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(blue)); err != nil {
		t.Fatalf("Encoding fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cover.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(buf.Bytes())
		case "/garbage":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewHTTPLoader(5 * time.Second)
	ctx := context.Background()

	img, err := loader.Load(ctx, server.URL+"/cover.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !isColor(img, 1, 1, blue) {
		t.Errorf("Unexpected pixel %v", img.At(1, 1))
	}

	if _, err := loader.Load(ctx, server.URL+"/missing"); err == nil {
		t.Errorf("Expected an error for a 404")
	}
	if _, err := loader.Load(ctx, server.URL+"/garbage"); err == nil {
		t.Errorf("Expected a decode error")
	}
}

func TestFileSink(t *testing.T) {
	sink := FileSink{Dir: t.TempDir() + "/out"}
	if err := sink.Save(context.Background(), ExportFileName, []byte("png")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(sink.Path(ExportFileName))
	if err != nil {
		t.Fatalf("Reading export: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("Unexpected contents %q", data)
	}
}
