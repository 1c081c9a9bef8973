package vtest

import (
	"strings"
	"testing"
)

// ExpectContains asserts that the rendered HTML contains expected.
//
// Example:
//
//	vtest.ExpectContains(t, res.HTML, "<h1>Products</h1>")
func ExpectContains(t testing.TB, html, expected string) {
	t.Helper()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered HTML does not contain
// unexpected.
func ExpectNotContains(t testing.TB, html, unexpected string) {
	t.Helper()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectText asserts that some element on the screen has exactly the given
// normalized text.
//
// Example:
//
//	vtest.ExpectText(t, res.Screen, "Product 42")
func ExpectText(t testing.TB, s *Screen, text string) {
	t.Helper()
	if s.QueryByText(text) == nil {
		t.Errorf("expected an element with text %q, got:\n%s", text, truncate(s.Text(), 500))
	}
}

// ExpectNoText asserts that no element on the screen has the given text.
func ExpectNoText(t testing.TB, s *Screen, text string) {
	t.Helper()
	if el := s.QueryByText(text); el != nil {
		t.Errorf("expected no element with text %q, found %s", text, truncate(el.HTML(), 500))
	}
}

// ExpectElement asserts that the screen contains an element matching
// selector.
//
// Example:
//
//	vtest.ExpectElement(t, res.Screen, "form[method=post]")
func ExpectElement(t testing.TB, s *Screen, selector string) {
	t.Helper()
	if _, err := parseSelector(selector); err != nil {
		t.Errorf("%v", err)
		return
	}
	if s.Query(selector) == nil {
		t.Errorf("expected rendered output to contain %s, got:\n%s", selector, truncate(s.HTML(), 500))
	}
}

// ExpectNoElement asserts that nothing on the screen matches selector.
func ExpectNoElement(t testing.TB, s *Screen, selector string) {
	t.Helper()
	if el := s.Query(selector); el != nil {
		t.Errorf("expected no %s, found %s", selector, truncate(el.HTML(), 500))
	}
}

// ExpectAttribute asserts that some element carries attr with value.
//
// Example:
//
//	vtest.ExpectAttribute(t, res.Screen, "class", "btn-primary")
func ExpectAttribute(t testing.TB, s *Screen, attr, value string) {
	t.Helper()
	if len(s.QueryAllByAttr(attr, value)) == 0 {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(s.HTML(), 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
