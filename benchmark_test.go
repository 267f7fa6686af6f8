package doclai_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ZaguanLabs/doclai"
	"github.com/ZaguanLabs/doclai/cache"
	"github.com/ZaguanLabs/doclai/processor"
	"github.com/ZaguanLabs/doclai/provider"
)

// Benchmarks for performance validation

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doclai.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	hash := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doclai.CacheKey(doclai.TypeHTML, hash, "es_ES")
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := cache.NewMemoryCache(0)
	_ = c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkMemoryCache_Set(b *testing.B) {
	c := cache.NewMemoryCache(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set("test-key", "test-value")
	}
}

func BenchmarkHTMLProcessor_Extract_Small(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	html := `<div><p>Hello World</p></div>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(html)
	}
}

func BenchmarkHTMLProcessor_Extract_Medium(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	var sb strings.Builder
	sb.WriteString("<section><h1>Course outline</h1>")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "<p>Paragraph %d with <strong>inline</strong> markup.</p>", i)
	}
	sb.WriteString("<ul><li>One</li><li>Two</li></ul></section>")
	html := sb.String()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(html)
	}
}

func BenchmarkXMLProcessor_Extract(b *testing.B) {
	proc := processor.NewXMLProcessor()
	var sb strings.Builder
	sb.WriteString(`<sequential display_name="Week 1">`)
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, `<problem display_name="Q%d"><label>Question %d</label><choice>Yes</choice></problem>`, i, i)
	}
	sb.WriteString("</sequential>")
	xml := sb.String()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = proc.Extract(xml)
	}
}

func BenchmarkTranslator_Process_Uncached(b *testing.B) {
	p := provider.NewMockProvider()
	tr := doclai.NewTranslator("Spanish", doclai.NewClient(p),
		doclai.WithProcessor(processor.NewHTMLProcessor()),
	)
	html := `<div><p>Hello</p><p>World</p></div>`
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tr.ProcessHTML(ctx, html)
	}
}

func BenchmarkTranslator_Process_Cached(b *testing.B) {
	p := provider.NewMockProvider()
	tr := doclai.NewTranslator("Spanish",
		doclai.NewClient(p, doclai.WithCache(cache.NewMemoryCache(0))),
		doclai.WithProcessor(processor.NewXMLProcessor()),
	)
	xml := `<problem><label>Hello</label><choice>World</choice></problem>`
	ctx := context.Background()
	_, _ = tr.ProcessXML(ctx, xml)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tr.ProcessXML(ctx, xml)
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doclai.GetLanguageName("es_ES")
	}
}
