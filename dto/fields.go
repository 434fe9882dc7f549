package dto

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/common"
)

const maxFormMemory = 1 << 20

// Fields is a flat request body. Form posts and JSON objects both decode to
// it so handlers accept either, with every value kept as its string form.
type Fields map[string]string

// ReadFields decodes the request body. A JSON body must be an object of
// scalars; numbers keep their literal text.
func ReadFields(c *gin.Context) (Fields, error) {
	if c.ContentType() == gin.MIMEJSON {
		return readJSON(c.Request.Body)
	}

	err := c.Request.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = c.Request.ParseForm()
	}
	if err != nil {
		return nil, common.BadRequest("invalid form body: " + err.Error())
	}
	f := Fields{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			f[k] = v[0]
		}
	}
	return f, nil
}

func readJSON(r io.Reader) (Fields, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Fields{}, nil
		}
		return nil, common.BadRequest("invalid JSON body: " + err.Error())
	}

	f := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			f[k] = val
		case json.Number:
			f[k] = val.String()
		case bool:
			f[k] = strconv.FormatBool(val)
		default:
			return nil, common.BadRequest("field " + k + " must be a scalar value")
		}
	}
	return f, nil
}

// Get returns the trimmed value of key.
func (f Fields) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Has reports whether key was sent with a non-blank value.
func (f Fields) Has(key string) bool {
	return f.Get(key) != ""
}

func (f Fields) Float(key string) (*float64, error) {
	if !f.Has(key) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(f.Get(key), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, common.BadRequest("Invalid numeric value for " + key)
	}
	return &v, nil
}

// Int parses an integer field. Float text such as "4.0" or "4.7" is
// truncated toward zero.
func (f Fields) Int(key string) (*int, error) {
	if !f.Has(key) {
		return nil, nil
	}
	s := f.Get(key)
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return nil, common.BadRequest("Invalid value for " + key)
	}
	n := int(v)
	return &n, nil
}

func (f Fields) Bool(key string) (*bool, error) {
	if !f.Has(key) {
		return nil, nil
	}
	b, err := strconv.ParseBool(f.Get(key))
	if err != nil {
		return nil, common.BadRequest(key + " must be a boolean")
	}
	return &b, nil
}

func (f Fields) String(key string) *string {
	if !f.Has(key) {
		return nil
	}
	v := f.Get(key)
	return &v
}
