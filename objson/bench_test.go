package objson

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func benchRegistry() *Registry {
	r := NewRegistry()
	cl := Define[Config](r, "Config")
	Field(cl, "name", func(c *Config) *string { return &c.Name })
	Field(cl, "port", func(c *Config) *int { return &c.Port })
	Field(cl, "debug", func(c *Config) *bool { return &c.Debug })
	Field(cl, "tags", func(c *Config) *[]string { return &c.Tags })
	Field(cl, "extra", func(c *Config) *map[string]string { return &c.Extra })
	return r
}

func BenchmarkWrite(b *testing.B) {
	s := New(benchRegistry())
	in := Config{
		Name:  "svc",
		Port:  9000,
		Tags:  []string{"a", "b", "c"},
		Extra: map[string]string{"env": "dev", "region": "eu"},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := s.Write(&in, io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRead(b *testing.B) {
	s := New(benchRegistry())
	var buf bytes.Buffer
	if err := s.Write(&Config{
		Name:  "svc",
		Port:  9000,
		Tags:  []string{"a", "b", "c"},
		Extra: map[string]string{"env": "dev", "region": "eu"},
	}, &buf); err != nil {
		b.Fatal(err)
	}
	doc := buf.String()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out Config
		if err := s.Read(&out, strings.NewReader(doc)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRead_Relaxed(b *testing.B) {
	src := `{
  // service
  name: "svc"
  port: 9000
  tags: ["a", "b", "c"]
}`
	s := New(benchRegistry())
	s.SetSyntax(Relaxed)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out Config
		if err := s.Read(&out, strings.NewReader(src)); err != nil {
			b.Fatal(err)
		}
	}
}
