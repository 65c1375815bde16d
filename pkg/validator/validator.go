package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func ValidateRegister(fio, phone, password string) ValidationErrors {
	errs := make(ValidationErrors)

	fio = strings.TrimSpace(fio)
	if fio == "" {
		errs.Add("fio", "Full name is required")
	} else if len(fio) > 255 {
		errs.Add("fio", "Full name is too long")
	}

	validatePhone(phone, errs)

	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	}

	return errs
}

func ValidateLogin(phone, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validatePhone(phone, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func validatePhone(phone string, errs ValidationErrors) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		errs.Add("phone", "Phone is required")
	} else if !phoneRegex.MatchString(phone) {
		errs.Add("phone", "Phone must contain 7-15 digits, optionally prefixed with +")
	}
}
