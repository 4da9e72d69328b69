// Package validator wraps go-playground/validator v10 with English messages
// and the project's custom rules ("phone").
//
// Failures come back as V10ValidationError keyed by json field name, which
// goerror and the router render as a field map.
package validator
