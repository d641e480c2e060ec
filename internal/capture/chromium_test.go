package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"missing url", Options{OutputPath: "x.png"}, true},
		{"missing output", Options{URL: "http://127.0.0.1:8080/"}, true},
		{"defaults", Options{URL: "http://127.0.0.1:8080/", OutputPath: "x.png"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			err := o.normalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Timeout != DefaultTimeoutSec*time.Second {
				t.Errorf("defaults not applied: %+v", o)
			}
		})
	}
}

func TestMonthPNGValidatesBeforeLaunching(t *testing.T) {
	if err := MonthPNG(context.Background(), Options{}); err == nil {
		t.Error("MonthPNG() accepted empty options")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preview.png")

	for _, body := range []string{"first", "second"} {
		if err := writeFileAtomic(path, []byte(body)); err != nil {
			t.Fatalf("writeFileAtomic() error = %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil || string(got) != body {
			t.Fatalf("content = %q, %v; want %q", got, err, body)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
