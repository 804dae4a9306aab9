package fetch_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgateway/pkg/fetch"
)

func TestHeadersSetAppend(t *testing.T) {
	var h fetch.Headers
	h.Append("Set-Cookie", "a=1")
	h.Append("X-Other", "x")
	h.Append("set-cookie", "b=2")

	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("SET-COOKIE"))
	assert.Equal(t, "a=1", h.Get("set-cookie"))
	assert.Equal(t, 3, h.Len())

	h.Set("Set-Cookie", "c=3")
	assert.Equal(t, []string{"c=3"}, h.Values("set-cookie"))
	assert.Equal(t, []fetch.Header{
		{Name: "set-cookie", Value: "c=3"},
		{Name: "x-other", Value: "x"},
	}, h.Entries())

	h.Del("x-other")
	assert.False(t, h.Has("X-Other"))
	assert.Equal(t, "", h.Get("x-other"))
}

func TestFieldsClassifiesSingleAndMulti(t *testing.T) {
	src := http.Header{
		"Cookie":       {"a=1", "b=2"},
		"Content-Type": {"application/json"},
		"X-Empty":      {},
	}

	fields := fetch.Fields(src)
	require.Len(t, fields, 2)

	assert.Equal(t, "Content-Type", fields[0].Name)
	assert.Equal(t, fetch.SingleValue("application/json"), fields[0].Value)
	assert.Equal(t, "Cookie", fields[1].Name)
	assert.Equal(t, fetch.MultiValue{"a=1", "b=2"}, fields[1].Value)
}

func TestFromHTTPKeepsMultiValuesDistinct(t *testing.T) {
	src := http.Header{}
	src.Add("Set-Cookie", "one=1; Path=/")
	src.Add("Set-Cookie", "two=2; Path=/")
	src.Set("Host", "example.com")

	h := fetch.FromHTTP(src)

	assert.Equal(t, []string{"one=1; Path=/", "two=2; Path=/"}, h.Values("set-cookie"))
	assert.Equal(t, "example.com", h.Get("host"))
	assert.Equal(t, 3, h.Len())

	back := h.HTTP()
	assert.Equal(t, []string{"one=1; Path=/", "two=2; Path=/"}, back.Values("Set-Cookie"))
}

func TestFromHTTPDeterministic(t *testing.T) {
	src := http.Header{"B": {"2"}, "A": {"1"}, "C": {"3", "4"}}
	first := fetch.FromHTTP(src).Entries()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, fetch.FromHTTP(src).Entries())
	}
}

func TestNewRequest(t *testing.T) {
	t.Run("rejects body on GET", func(t *testing.T) {
		_, err := fetch.NewRequest(http.MethodGet, "http://h/api/auth/x", fetch.Headers{}, []byte("{}"))
		assert.ErrorIs(t, err, fetch.ErrBodyNotAllowed)
	})

	t.Run("rejects relative url", func(t *testing.T) {
		_, err := fetch.NewRequest(http.MethodGet, "/api/auth/x", fetch.Headers{}, nil)
		assert.ErrorIs(t, err, fetch.ErrInvalidURL)
	})

	t.Run("empty body is no body", func(t *testing.T) {
		req, err := fetch.NewRequest("post", "http://h/api/auth/x", fetch.Headers{}, []byte{})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.False(t, req.HasBody())
	})

	t.Run("decodes json", func(t *testing.T) {
		req, err := fetch.NewRequest(http.MethodPost, "http://h/x", fetch.Headers{}, []byte(`{"email":"a@x.com"}`))
		require.NoError(t, err)
		var body struct {
			Email string `json:"email"`
		}
		require.NoError(t, req.JSON(&body))
		assert.Equal(t, "a@x.com", body.Email)
	})
}

func TestResponseText(t *testing.T) {
	resp, err := fetch.NewJSONResponse(http.StatusOK, map[string]bool{"ok": true})
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("content-type"))

	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	empty := fetch.NewResponse(http.StatusNoContent, fetch.Headers{}, nil)
	assert.False(t, empty.HasBody())
	text, err = empty.Text()
	assert.NoError(t, err)
	assert.Equal(t, "", text)

	stream := &fetch.Response{Status: 200, Body: strings.NewReader("plain")}
	text, err = stream.Text()
	assert.NoError(t, err)
	assert.Equal(t, "plain", text)
}
