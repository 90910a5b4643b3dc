package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/textcore/file"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name  string
		data  string
		want  Config
		isErr bool
	}{
		{"Empty", "", Default(), false},
		{
			"Full",
			`service = "docs"
load = "mmap"
save = "atomic"
block_size = 4096
limit = 65536
watch = false
`,
			Config{Service: "docs", Load: "mmap", Save: "atomic", BlockSize: 4096, Limit: 65536},
			false,
		},
		{"Partial", `save = "inplace"`, Config{Service: "textfs", Load: "auto", Save: "inplace", Watch: true}, false},
		{"UnknownKey", `colour = "blue"`, Config{}, true},
		{"BadLoad", `load = "slurp"`, Config{}, true},
		{"BadSave", `save = "later"`, Config{}, true},
		{"Negative", `limit = -1`, Config{}, true},
		{"Malformed", `service = `, Config{}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse("test.toml", []byte(tc.data))
			if tc.isErr {
				var pe *ParseError
				if !errors.As(err, &pe) || pe.Path != "test.toml" {
					t.Fatalf("got error %v, want a ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("got error %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("missing file config mismatch (-want +got):\n%s", diff)
	}

	name := filepath.Join(dir, "textfs.toml")
	if err := os.WriteFile(name, []byte("service = \"other\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err = Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if c.Service != "other" || !c.Watch {
		t.Errorf("got %+v", c)
	}
}

func TestMethods(t *testing.T) {
	c := Config{Load: "read", Save: "inplace"}
	if m, err := c.LoadMethod(); err != nil || m != file.LoadRead {
		t.Errorf("LoadMethod() = %v, %v", m, err)
	}
	if m, err := c.SaveMethod(); err != nil || m != file.SaveInPlace {
		t.Errorf("SaveMethod() = %v, %v", m, err)
	}
	if m, err := (Config{}).LoadMethod(); err != nil || m != file.LoadAuto {
		t.Errorf("default LoadMethod() = %v, %v", m, err)
	}
	if n := len((Config{BlockSize: 10, Limit: 100}).TextOptions()); n != 2 {
		t.Errorf("%d text options, want 2", n)
	}
	if n := len(Default().TextOptions()); n != 0 {
		t.Errorf("%d default text options, want 0", n)
	}
}
