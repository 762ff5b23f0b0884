package errors

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// InvalidParam names one rejected request field.
type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json tag,
// so invalid_params match the request body keys.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// ValidationFailed sends a 400 listing every rejected field.
func ValidationFailed(c *gin.Context, params ...InvalidParam) {
	problem := newProblem(c, http.StatusBadRequest, "Bad Request", "request validation failed")
	problem.InvalidParams = params
	c.Render(http.StatusBadRequest, problemJSON{problem})
}

// BindingError maps a ShouldBind error to a problem response.
func BindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		BadRequest(c, "request body must be a valid JSON object")
		return
	}

	params := make([]InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		params = append(params, InvalidParam{Name: fe.Field(), Reason: reason(fe)})
	}
	ValidationFailed(c, params...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
