// Package vtest provides assertions over rendered route HTML.
//
// A Screen parses the output of a render and answers the queries a test
// usually needs: text content, elements by tag, attribute or simple CSS
// selector.
//
// # Quick Start
//
//	func TestProductPage(t *testing.T) {
//	    res, err := testrouter.NavigateTo(ctx, "/products/42")
//	    require.NoError(t, err)
//
//	    vtest.ExpectText(t, res.Screen, "Product 42")
//	    vtest.ExpectElement(t, res.Screen, "form")
//	}
//
// # Queries
//
// Get* queries return an error when nothing or more than one element
// matches. Query* queries return nil instead, and QueryAll* return every
// match in document order:
//
//	heading, err := screen.GetByTag("h1")
//	button := screen.QueryByText("Save")
//	items := screen.QueryAll("ul > li")
//
// Selectors support a tag, #id, .class and [attr] or [attr=value] parts
// joined into one compound, with descendant (space) and child (>)
// combinators.
package vtest
