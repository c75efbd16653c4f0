package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

func sample() *deps.Resolution {
	requests := atom.Package{Category: "dev-python", Name: "requests", Version: "2.31.0"}
	urllib3 := atom.Package{Category: "dev-python", Name: "urllib3", Version: "2.0.7"}
	res := &deps.Resolution{
		Roots:    []string{"dev-python/requests"},
		Packages: deps.Set{},
		Edges:    []deps.Edge{{From: requests, To: urllib3}},
		Skipped: []deps.Skip{
			{From: requests, Ref: "dev-python/chardet", Reason: deps.SkipNotInDatabase},
			{Ref: "dev-python/requests-1.0", Reason: deps.SkipNoDescription},
		},
	}
	res.Packages.Add(urllib3)
	res.Packages.Add(requests)
	return res
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sample(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`"roots": [`,
		`"id": "dev-python/requests-2.31.0"`,
		`"from": "dev-python/requests-2.31.0"`,
		`"reason": "not in database"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Index(out, "requests-2.31.0") > strings.Index(out, "urllib3-2.0.7") {
		t.Error("nodes are not sorted")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.json")
	want := sample()
	if err := ExportJSON(want, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	if !reflect.DeepEqual(got.Roots, want.Roots) {
		t.Errorf("Roots = %v, want %v", got.Roots, want.Roots)
	}
	if !reflect.DeepEqual(got.Packages.Sorted(), want.Packages.Sorted()) {
		t.Errorf("Packages = %v, want %v", got.Packages.Sorted(), want.Packages.Sorted())
	}
	if !reflect.DeepEqual(got.Edges, want.Edges) {
		t.Errorf("Edges = %v, want %v", got.Edges, want.Edges)
	}
	if !reflect.DeepEqual(got.Skipped, want.Skipped) {
		t.Errorf("Skipped = %v, want %v", got.Skipped, want.Skipped)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"nodes": [`},
		{"bad id", `{"nodes": [{"id": "requests"}], "edges": []}`},
		{"duplicate", `{"nodes": [{"id": "app-misc/foo-1"}, {"id": "app-misc/foo-1"}], "edges": []}`},
		{"unknown edge target", `{"nodes": [{"id": "app-misc/foo-1"}], "edges": [{"from": "app-misc/foo-1", "to": "app-misc/bar-1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.GetCode(err) == "" {
				t.Errorf("error %v carries no code", err)
			}
		})
	}
}
