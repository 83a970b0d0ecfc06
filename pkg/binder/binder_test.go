package binder

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Title string `json:"title" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type pathParams struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required,sourcepath"`
}

var (
	goodJSON             = `{"title":" muwatta "}`
	unknownFieldsErrJSON = `{"title":"muwatta","foo":"bar"}`
	typeErrJSON          = `{"title":123}`
	validationErrJSON    = `{"title":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "not supported")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"title" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "muwatta", p.Title)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("accepts book database paths", func(tt *testing.T) {
		c := newContext(`{"paths":["/data/muwatta.accdb","/data/umm.bok"]}`, echo.MIMEApplicationJSON)
		p := pathParams{}
		err = b.Bind(&p, c)
		require.NoError(tt, err)
	})

	t.Run("rejects paths that aren't book databases", func(tt *testing.T) {
		c := newContext(`{"paths":["/data/muwatta.docx"]}`, echo.MIMEApplicationJSON)
		p := pathParams{}
		err = b.Bind(&p, c)
		assert.Contains(tt, err.Error(), ".accdb, .mdb, or .bok")
	})
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
