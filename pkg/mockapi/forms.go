package mockapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"katydid-storefront/pkg/validator"
	"katydid-storefront/pkg/validator/forms"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// submitForm 服务端重新执行同一套规则
// 场景由 ?scene= 指定，默认 create
func (s *Server) submitForm(c *gin.Context) {
	scene := validator.SceneCreate
	if name := c.Query("scene"); name != "" {
		parsed, ok := validator.ParseScene(name)
		if !ok {
			reject(c, http.StatusBadRequest, "Unknown scene "+name)
			return
		}
		scene = parsed
	}

	form, err := forms.Lookup(c.Param("name"),
		forms.WithScene(scene),
		forms.WithClock(s.now),
		forms.WithLogger(s.logger))
	if err != nil {
		reject(c, http.StatusNotFound, "Unknown form "+c.Param("name"))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		reject(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	values, err := form.DecodeJSON(body)
	if err != nil {
		reject(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	if unknown := form.UnknownFields(values); len(unknown) > 0 {
		reject(c, http.StatusBadRequest, "Unknown field "+strings.Join(unknown, ", "))
		return
	}

	report := form.ValidateForm(values)
	if !report.IsValid {
		errs := report.Errors()
		out := make([]fieldError, 0, len(errs))
		for _, res := range errs {
			out = append(out, fieldError{Field: res.Field, Message: res.Message})
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Please fix the highlighted fields",
			"errors":  out,
		})
		return
	}

	s.mu.Lock()
	id := s.nextItemID()
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": titleCase(form.Name()) + " saved successfully",
		"id":      id,
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
