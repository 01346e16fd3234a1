package handler

import (
	"errors"
	"net/http"
	"reflect"

	"pricedesk/internal/apierror"
	"pricedesk/internal/pricing"
	"pricedesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Prices arrive as decimal.Decimal; expose them to min/max tags as float64.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate decodes the JSON body into req and checks its validate tags.
// On false the response is already written.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = apierror.FieldMessage(fe.Tag(), fe.Param())
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service and engine errors to HTTP statuses. Anything not
// recognised is logged and answered with a generic 500.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPartNotFound),
		errors.Is(err, service.ErrNoPartsFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrNoPriceFields):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeNoPriceFields, err.Error()))
	case errors.Is(err, pricing.ErrInvalidField),
		errors.Is(err, pricing.ErrInvalidTransform),
		errors.Is(err, pricing.ErrInvalidMagnitude),
		errors.Is(err, pricing.ErrMissingReason):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, err.Error()))
	default:
		// ErrorHandler logs it with the request id; the client only sees fallback.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.Internal(fallback))
	}
}
