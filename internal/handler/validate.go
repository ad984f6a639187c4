package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)
}

// decodeAndValidate decodes the JSON request body into dst and runs struct
// validation, writing a 400 response on failure. It reports whether the
// request may proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var errs validator.ValidationErrors
		message := "request validation failed"
		if errors.As(err, &errs) && len(errs) > 0 {
			message = errs[0].Translate(translator)
		}
		writeError(w, http.StatusBadRequest, "validation_failed", message)
		return false
	}

	return true
}
