package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config missing", "E101", "Project configuration not found", CategoryConfig},
		{"module load", "E110", "Route module failed to load", CategoryLoad},
		{"pattern", "E120", "Route pattern rejected", CategoryResolution},
		{"no context", "E130", "No hydration context returned", CategoryRuntime},
		{"unknown", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E102").WithDetail("no app/routes.(yaml|yml|json|toml) in /src")
	assert.Equal(t, "E102: Route configuration not found (no app/routes.(yaml|yml|json|toml) in /src)", err.Error())

	plain := &Error{Message: "plain"}
	assert.Equal(t, "plain", plain.Error())

	wrapped := New("E110").Wrap(fmt.Errorf("boom"))
	assert.True(t, strings.HasSuffix(wrapped.Error(), ": boom"))
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := fmt.Errorf("building: %w", New("E110").Wrap(cause))

	assert.True(t, stderrors.Is(err, New("E110")))
	assert.False(t, stderrors.Is(err, New("E101")))
	assert.True(t, stderrors.Is(err, cause))

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, CategoryLoad, e.Category)
	assert.Equal(t, "E110", Code(err))
	assert.Equal(t, "", Code(cause))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E110"))

	orig := New("E101")
	assert.Same(t, orig, FromError(orig, "E110"))

	wrapped := FromError(stderrors.New("x"), "E110")
	assert.Equal(t, "E110", wrapped.Code)
}

func TestWithLocationFromError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(file, []byte("- id: a\n  file: a.go\n- id: [\n- id: c\n"), 0o644))

	err := New("E105").WithLocationFromError(file, stderrors.New("yaml: line 3: did not find expected node content"))
	require.NotNil(t, err.Location)
	assert.Equal(t, 3, err.Location.Line)
	assert.NotEmpty(t, err.Context)

	noLine := New("E105").WithLocationFromError(file, stderrors.New("unexpected EOF"))
	assert.Equal(t, 0, noLine.Location.Line)
	assert.Equal(t, file, noLine.Location.String())
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E103").
		WithFile("/src/app/root.(go|templ)").
		WithDetail("root module missing").
		WithSuggestion("create app/root.go").
		Wrap(stderrors.New("stat failed"))

	out := err.Format()
	assert.Contains(t, out, "ERROR E103: Root module not found")
	assert.Contains(t, out, "/src/app/root.(go|templ)")
	assert.Contains(t, out, "Hint: create app/root.go")
	assert.Contains(t, out, "Cause: stat failed")
	assert.NotContains(t, out, "Learn more")

	assert.Equal(t, "/src/app/root.(go|templ): E103: Root module not found (root module missing)", err.FormatCompact())
	assert.Contains(t, err.FormatJSON(), `"code":"E103"`)
	assert.Contains(t, err.FormatJSON(), `"cause":"stat failed"`)
}

func TestFprintJSON(t *testing.T) {
	var b strings.Builder
	FprintJSON(&b, fmt.Errorf("building: %w", New("E110").WithFile("app/routes/a.go")))
	assert.Contains(t, b.String(), `"code":"E110"`)
	assert.Contains(t, b.String(), `"file":"app/routes/a.go"`)
	assert.True(t, strings.HasSuffix(b.String(), "}\n"))

	b.Reset()
	FprintJSON(&b, stderrors.New("plain"))
	assert.Contains(t, b.String(), `"message":"plain"`)
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 10))
	assert.Equal(t, []string{"short"}, wrapText("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	assert.Len(t, codes, len(registry))
	tmpl, ok := GetTemplate("E131")
	require.True(t, ok)
	assert.Equal(t, CategoryRuntime, tmpl.Category)
}
