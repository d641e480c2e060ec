package main

import (
	"bytes"
	"strings"
	"testing"

	"apptcal/internal/calendar"
	"apptcal/internal/config"
)

func TestPrintGrid(t *testing.T) {
	g, err := calendar.BuildMonthGrid(2025, 2)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printGrid(&buf, g); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want title + header + 6 rows:\n%s", len(lines), buf.String())
	}
	if strings.TrimSpace(lines[0]) != "March 2025" {
		t.Errorf("title = %q", lines[0])
	}
	if lines[1] != " Sun Mon Tue Wed Thu Fri Sat" {
		t.Errorf("header = %q", lines[1])
	}
	// March 1 2025 is a Saturday.
	if lines[2] != strings.Repeat(" ", 24)+"   1" {
		t.Errorf("first row = %q", lines[2])
	}
	if lines[7] != "  30  31" {
		t.Errorf("last row = %q", lines[7])
	}
}

func TestGridCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"apptcal", "grid", "--year", "2015", "--month", "2"}); err != nil {
		t.Fatalf("grid: %v", err)
	}
	if !strings.Contains(out.String(), "February 2015") {
		t.Errorf("output = %q", out.String())
	}

	if err := app.Run([]string{"apptcal", "grid", "--year", "2015", "--month", "13"}); err == nil {
		t.Error("month 13 accepted")
	}
}

func TestCaptureOptions(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Listen = ":9090"
	conf.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "pw"}

	opts := captureOptions(conf, "", "")
	if opts.URL != "http://127.0.0.1:9090/" {
		t.Errorf("URL = %q", opts.URL)
	}
	if opts.OutputPath != conf.Capture.Output || opts.Username != "admin" || opts.Password != "pw" {
		t.Errorf("opts = %+v", opts)
	}

	opts = captureOptions(conf, "http://display.local/", "/tmp/out.png")
	if opts.URL != "http://display.local/" || opts.OutputPath != "/tmp/out.png" {
		t.Errorf("overrides ignored: %+v", opts)
	}
}

func TestFeedSourcesSkipsEmptyURLs(t *testing.T) {
	conf := config.DefaultConfig()
	conf.ICS = []config.ICSConfig{
		{Name: "team", URL: "https://example.com/team.ics"},
		{ID: "blank"},
	}
	got := feedSources(conf)
	if len(got) != 1 || got[0].ID != "team" {
		t.Errorf("sources = %+v", got)
	}
}
