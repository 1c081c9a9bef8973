package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChiPattern(t *testing.T) {
	tests := []struct {
		in, pattern, splat string
	}{
		{"/", "/", ""},
		{"", "/", ""},
		{"/products", "/products", ""},
		{"/products/:id", "/products/{id}", ""},
		{"/users/:id?", "/users/{id}", ""},
		{"/files/*", "/files/*", ""},
		{"/docs/*slug", "/docs/*", "slug"},
		{"/a/*rest/ignored", "/a/*", "rest"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pattern, splat := chiPattern(tt.in)
			assert.Equal(t, tt.pattern, pattern)
			assert.Equal(t, tt.splat, splat)
		})
	}
}

func TestNormalizePathname(t *testing.T) {
	assert.Equal(t, "/", normalizePathname(""))
	assert.Equal(t, "/", normalizePathname("/"))
	assert.Equal(t, "/a/b", normalizePathname("a//b/"))
	assert.Equal(t, "/products", normalizePathname("/products/"))
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/products", joinPaths("/", "products"))
	assert.Equal(t, "/products/:id", joinPaths("/products", ":id"))
	assert.Equal(t, "/abs", joinPaths("/products", "/abs"))
	assert.Equal(t, "/products", joinPaths("/products", ""))
}

func TestMatch_Branches(t *testing.T) {
	h := mustHandler(t, shopTree())

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"root", "routes/home"}},
		{"/products", []string{"root", "routes/products", "routes/products.index"}},
		{"/products/", []string{"root", "routes/products", "routes/products.index"}},
		{"/products/42", []string{"root", "routes/products", "routes/products.$id"}},
		{"/about", []string{"root", "routes/_marketing", "routes/about"}},
		{"/files/a/b.txt", []string{"root", "routes/files"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			matches, ok := h.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, ids(matches))
		})
	}
}

func TestMatch_Params(t *testing.T) {
	h := mustHandler(t, shopTree())

	matches, ok := h.Match("/products/42")
	require.True(t, ok)
	assert.Equal(t, "42", matches[2].Params.Get("id"))
	assert.Equal(t, "/products/{id}", matches[2].Pattern)

	matches, ok = h.Match("/files/a/b.txt")
	require.True(t, ok)
	assert.Equal(t, "a/b.txt", matches[1].Params.Get("*"))
	assert.Equal(t, "a/b.txt", matches[1].Params.Get("path"))
}

func TestMatch_DecodesParams(t *testing.T) {
	h := mustHandler(t, shopTree())

	matches, ok := h.Match("/products/a%20b")
	require.True(t, ok)
	assert.Equal(t, "a b", matches[2].Params.Get("id"))
	assert.Equal(t, "/products/a%20b", matches[2].Pathname)

	// An escaped slash stays inside one segment.
	matches, ok = h.Match("/products/a%2Fb")
	require.True(t, ok)
	assert.Equal(t, "a/b", matches[2].Params.Get("id"))

	matches, ok = h.Match("/products/100%")
	require.True(t, ok)
	assert.Equal(t, "100%", matches[2].Params.Get("id"))
}

func TestMatch_NoMatch(t *testing.T) {
	h := mustHandler(t, shopTree())

	_, ok := h.Match("/nowhere")
	assert.False(t, ok)

	_, ok = h.Match("/products/42/extra")
	assert.False(t, ok)
}

func TestMatch_DuplicatePatternFirstWins(t *testing.T) {
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/"},
			NewRoute(Route{ID: "first", Path: "dup"}),
			NewRoute(Route{ID: "second", Path: "dup"}),
		),
	}
	h := mustHandler(t, routes)

	matches, ok := h.Match("/dup")
	require.True(t, ok)
	assert.Equal(t, []string{"root", "first"}, ids(matches))
}

func TestMatch_Patterns(t *testing.T) {
	h := mustHandler(t, shopTree())
	assert.Equal(t, []string{
		"/",
		"/products",
		"/products/{id}",
		"/about",
		"/files/*",
	}, h.Patterns())
}

func TestObject_IndexInvariants(t *testing.T) {
	idx := NewIndex(Route{ID: "i", Path: "ignored"})
	assert.True(t, idx.Index())
	assert.Empty(t, idx.Path)
	assert.Nil(t, idx.Children())

	r := NewRoute(Route{ID: "r", Path: "r"})
	assert.False(t, r.Index())
	assert.NotNil(t, r.Children())
	assert.Empty(t, r.Children())
}

func TestObject_Walk(t *testing.T) {
	var visited []string
	var depths []int
	for _, o := range shopTree() {
		o.Walk(func(o *Object, depth int) {
			visited = append(visited, o.ID)
			depths = append(depths, depth)
		})
	}
	assert.Equal(t, []string{
		"root",
		"routes/home",
		"routes/products",
		"routes/products.index",
		"routes/products.$id",
		"routes/_marketing",
		"routes/about",
		"routes/files",
	}, visited)
	assert.Equal(t, []int{0, 1, 1, 2, 2, 1, 2, 1}, depths)
}
