package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags to gin's validator and reports
// field errors under their JSON names. Safe to call more than once.
func RegisterValidators() {
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

		_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
			return model.BookingStatus(strings.ToLower(fl.Field().String())).Valid()
		})
		_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
			return model.PaymentStatus(strings.ToLower(fl.Field().String())).Valid()
		})
		_ = v.RegisterValidation("room_type", func(fl validator.FieldLevel) bool {
			_, err := parse.ParseRoomType(fl.Field().String())
			return err == nil
		})
	})
}
