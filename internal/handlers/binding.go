package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errEmptyBody = errors.New("el cuerpo de la solicitud está vacío")

// BindNestedOrFlat binds the request body to obj and runs the binding tag
// validation. Clients may send the object wrapped under key
// ({"election": {...}}) or flat ({...}).
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return errEmptyBody
	}

	if err := unmarshalNestedOrFlat(bodyBytes, key, obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

func unmarshalNestedOrFlat(body []byte, key string, obj interface{}) error {
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err == nil {
		if val, ok := nested[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
