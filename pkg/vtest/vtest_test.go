package vtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<main id="app">
  <h1 class="title big">Products</h1>
  <ul>
    <li data-testid="p1"><a href="/products/1">Keyboard</a></li>
    <li data-testid="p2"><a href="/products/2">Mouse</a></li>
  </ul>
  <form method="post"><button type="submit">Save</button></form>
  <script>var hidden = "text";</script>
</main>`

func TestParse(t *testing.T) {
	s, err := Parse(page)
	require.NoError(t, err)
	assert.Equal(t, page, s.HTML())
	assert.Equal(t, "Products Keyboard Mouse Save", s.Text())

	root := s.Root()
	require.Len(t, root, 1)
	assert.Equal(t, "main", root[0].Tag())
}

func TestParse_Fragment(t *testing.T) {
	s := MustParse(`<td>cell</td><p>one</p><p>two</p>`)
	assert.Len(t, s.QueryAllByTag("p"), 2)
	assert.Equal(t, "cell one two", s.Text())
}

func TestScreen_ByTag(t *testing.T) {
	s := MustParse(page)

	h1, err := s.GetByTag("H1")
	require.NoError(t, err)
	assert.Equal(t, "Products", h1.Text())

	_, err = s.GetByTag("li")
	assert.EqualError(t, err, "vtest: found 2 elements with tag li")
	_, err = s.GetByTag("table")
	assert.EqualError(t, err, "vtest: no element found with tag table")
	assert.Nil(t, s.QueryByTag("table"))
}

func TestScreen_ByText(t *testing.T) {
	s := MustParse(page)

	a, err := s.GetByText("Keyboard")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Tag())
	href, ok := a.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/products/1", href)

	assert.Equal(t, "button", s.QueryByText("  Save ").Tag())
	assert.Nil(t, s.QueryByText("hidden"))
	assert.Nil(t, s.QueryByText("Key"))
}

func TestScreen_ByAttr(t *testing.T) {
	s := MustParse(page)

	li, err := s.GetByTestID("p2")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", li.Text())
	assert.Len(t, li.Children(), 1)
	assert.Equal(t, `<li data-testid="p2"><a href="/products/2">Mouse</a></li>`, li.HTML())

	_, err = s.GetByAttr("method", "get")
	assert.Error(t, err)
}

func TestScreen_Selectors(t *testing.T) {
	s := MustParse(page)

	tests := []struct {
		selector string
		want     []string
	}{
		{"h1", []string{"Products"}},
		{"#app h1.title", []string{"Products"}},
		{".big.title", []string{"Products"}},
		{".title.small", nil},
		{"li a", []string{"Keyboard", "Mouse"}},
		{"ul > li > a", []string{"Keyboard", "Mouse"}},
		{"main > a", nil},
		{"main a", []string{"Keyboard", "Mouse"}},
		{"[data-testid=p1] a", []string{"Keyboard"}},
		{`a[href="/products/2"]`, []string{"Mouse"}},
		{"form[method]", []string{"Save"}},
		{"*[type=submit]", []string{"Save"}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			var got []string
			for _, el := range s.QueryAll(tt.selector) {
				got = append(got, el.Text())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScreen_InvalidSelector(t *testing.T) {
	s := MustParse(page)
	for _, sel := range []string{"", "> a", "a >", "a > > b", "a[", "a.", "#", "[=x]", "a!"} {
		assert.Nil(t, s.QueryAll(sel), sel)
		_, err := s.Get(sel)
		assert.Error(t, err, sel)
	}
}

// recorder captures assertion failures.
type recorder struct {
	testing.TB
	errors []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestExpect(t *testing.T) {
	s := MustParse(page)

	ok := &recorder{}
	ExpectContains(ok, s.HTML(), "<h1")
	ExpectNotContains(ok, s.HTML(), "Error")
	ExpectText(ok, s, "Mouse")
	ExpectNoText(ok, s, "Trackpad")
	ExpectElement(ok, s, "form button")
	ExpectNoElement(ok, s, "table")
	ExpectAttribute(ok, s, "class", "title big")
	assert.Empty(t, ok.errors)

	bad := &recorder{}
	ExpectContains(bad, s.HTML(), "<table")
	ExpectNotContains(bad, s.HTML(), "<h1")
	ExpectText(bad, s, "Trackpad")
	ExpectNoText(bad, s, "Mouse")
	ExpectElement(bad, s, "table")
	ExpectElement(bad, s, "a[")
	ExpectNoElement(bad, s, "h1")
	ExpectAttribute(bad, s, "class", "title")
	require.Len(t, bad.errors, 8)
	assert.Contains(t, bad.errors[0], `expected rendered output to contain "<table"`)
	assert.Contains(t, bad.errors[5], "invalid selector")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcde", 2))
}
