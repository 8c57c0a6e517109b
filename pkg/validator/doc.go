// Package validator provides small composable validation rules.
//
// Rules are plain values evaluated by Apply, which returns every failure at
// once as ValidationErrors:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", creds.Email),
//		validator.Required("password", creds.Password),
//		validator.MaxLen("password", creds.Password, 256),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs.Has("email") {
//		// ...
//	}
//
// ValidationErrors match ErrValidationFailed with errors.Is.
package validator
