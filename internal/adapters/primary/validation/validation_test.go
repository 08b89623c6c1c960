package validation

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	t.Run("defaults when no parameters are given", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/messages/abc", nil)

		params := ParsePagination(r, 100)

		assert.Equal(t, 25, params.Limit)
		assert.Equal(t, 0, params.Offset)
	})

	t.Run("reads limit and offset from the query", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/messages/abc?limit=10&offset=30", nil)

		params := ParsePagination(r, 100)

		assert.Equal(t, 10, params.Limit)
		assert.Equal(t, 30, params.Offset)
	})

	t.Run("clamps the limit to the maximum", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/messages/abc?limit=5000", nil)

		params := ParsePagination(r, 100)

		assert.Equal(t, 100, params.Limit)
	})

	t.Run("falls back to defaults on garbage values", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/messages/abc?limit=abc&offset=-5", nil)

		params := ParsePagination(r, 100)

		assert.Equal(t, 25, params.Limit)
		assert.Equal(t, 0, params.Offset)
	})
}
