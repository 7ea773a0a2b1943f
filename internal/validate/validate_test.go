package validate

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type turn struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type createInput struct {
	Title    string   `json:"title" validate:"required,max=20"`
	Notes    *string  `json:"notes" validate:"omitnil,max=50"`
	Amount   *float64 `json:"amount" validate:"omitnil,gte=0"`
	Tags     []string `json:"tags"`
	Messages []turn   `json:"messages" validate:"omitempty,dive"`
}

type patchInput struct {
	Title *string  `json:"title" validate:"omitnil,min=1" patch:"required"`
	Notes *string  `json:"notes"`
	Count *int     `json:"count" validate:"omitnil,gte=0"`
	Due   *string  `json:"due" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Score *float64 `json:"score"`
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()

	var errs Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	for _, body := range []string{"", "   ", "not json", `{"title":`, `{"title":"a"} trailing`} {
		var in createInput
		assert.ErrorIs(t, DecodeJSON([]byte(body), &in), ErrInvalidJSON, body)
	}
}

func TestDecodeJSONTypeMismatchNamesField(t *testing.T) {
	var in createInput
	errs := fieldErrors(t, DecodeJSON([]byte(`{"title":"x","amount":"lots"}`), &in))
	require.Len(t, errs, 1)
	assert.Equal(t, "amount", errs[0].Path)
}

func TestBindTrimsStrings(t *testing.T) {
	var in createInput
	err := Bind(newContext(`{"title":"  Grant Title  ","notes":"  n ","tags":[" a ","b "],"messages":[{"role":"user","content":" hi "}]}`), &in)
	require.NoError(t, err)

	assert.Equal(t, "Grant Title", in.Title)
	require.NotNil(t, in.Notes)
	assert.Equal(t, "n", *in.Notes)
	assert.Equal(t, []string{"a", "b"}, in.Tags)
	assert.Equal(t, "hi", in.Messages[0].Content)
}

func TestBindWhitespaceOnlyRequiredFails(t *testing.T) {
	var in createInput
	errs := fieldErrors(t, Bind(newContext(`{"title":"    "}`), &in))
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Path)
	assert.NotEmpty(t, errs[0].Message)
}

func TestBindReportsNestedPaths(t *testing.T) {
	var in createInput
	errs := fieldErrors(t, Bind(newContext(`{"title":"ok","messages":[{"role":"user","content":"a"},{"role":"robot","content":""}]}`), &in))

	paths := make([]string, 0, len(errs))
	for _, fe := range errs {
		paths = append(paths, fe.Path)
	}
	assert.ElementsMatch(t, []string{"messages[1].role", "messages[1].content"}, paths)
}

func TestBindRejectsOversizedBody(t *testing.T) {
	var in createInput
	err := Bind(newContext(`{"title":"`+strings.Repeat("x", MaxBodyBytes)+`"}`), &in)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusRequestEntityTooLarge, he.Code)
}

func TestBindPatch(t *testing.T) {
	t.Run("only present fields are updated", func(t *testing.T) {
		var in patchInput
		updates, err := BindPatch(newContext(`{"notes":"  later ","count":3}`), &in)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"Notes": "later", "Count": 3}, updates)
	})

	t.Run("explicit null clears", func(t *testing.T) {
		var in patchInput
		updates, err := BindPatch(newContext(`{"notes":null,"due":null}`), &in)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"Notes": nil, "Due": nil}, updates)
	})

	t.Run("required field cannot be cleared", func(t *testing.T) {
		var in patchInput
		errs := fieldErrors(t, func() error { _, err := BindPatch(newContext(`{"title":null}`), &in); return err }())
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Path)
	})

	t.Run("keys match field names case-insensitively", func(t *testing.T) {
		var in patchInput
		updates, err := BindPatch(newContext(`{"Notes":"x","COUNT":2}`), &in)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"Notes": "x", "Count": 2}, updates)
	})

	t.Run("differently cased null cannot clear a required field", func(t *testing.T) {
		var in patchInput
		errs := fieldErrors(t, func() error { _, err := BindPatch(newContext(`{"title":"X","TITLE":null}`), &in); return err }())
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Path)
	})

	t.Run("last of differently cased duplicates wins", func(t *testing.T) {
		var in patchInput
		updates, err := BindPatch(newContext(`{"TITLE":null,"title":"X"}`), &in)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"Title": "X"}, updates)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		var in patchInput
		updates, err := BindPatch(newContext(`{"notes":"x","colour":"red"}`), &in)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"Notes": "x"}, updates)
	})

	t.Run("empty object is rejected", func(t *testing.T) {
		var in patchInput
		_, err := BindPatch(newContext(`{}`), &in)
		fieldErrors(t, err)
	})

	t.Run("non-object body is invalid", func(t *testing.T) {
		var in patchInput
		_, err := BindPatch(newContext(`[1,2]`), &in)
		assert.Error(t, err)
	})

	t.Run("constraints still apply", func(t *testing.T) {
		var in patchInput
		_, err := BindPatch(newContext(`{"due":"tomorrow"}`), &in)
		errs := fieldErrors(t, err)
		assert.Equal(t, "due", errs[0].Path)
	})
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Page{Page: 1, Limit: 20}, p)

	p, err = ParsePage(url.Values{"page": {"3"}, "limit": {"500"}})
	require.NoError(t, err)
	assert.Equal(t, Page{Page: 3, Limit: 100}, p)
	assert.Equal(t, 200, p.Offset())

	_, err = ParsePage(url.Values{"page": {"0"}, "limit": {"abc"}})
	errs := fieldErrors(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "page", errs[0].Path)
	assert.Equal(t, "limit", errs[1].Path)

	_, err = ParsePage(url.Values{"page": {"99999999999999999999"}})
	errs = fieldErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "page", errs[0].Path)
}

func TestPagePastEnd(t *testing.T) {
	huge, err := ParsePage(url.Values{"page": {"100000000000000000"}, "limit": {"100"}})
	require.NoError(t, err)
	assert.True(t, huge.PastEnd(23))
	assert.True(t, huge.PastEnd(0))

	assert.False(t, Page{Page: 1, Limit: 20}.PastEnd(1))
	assert.False(t, Page{Page: 2, Limit: 10}.PastEnd(11))
	assert.True(t, Page{Page: 2, Limit: 10}.PastEnd(10))
	assert.True(t, Page{Page: 1}.PastEnd(5))
}

func TestParseTime(t *testing.T) {
	got := ParseTime("2025-06-01T09:30:00+02:00")
	assert.Equal(t, "2025-06-01T07:30:00Z", got.Format(DateTime))
}
