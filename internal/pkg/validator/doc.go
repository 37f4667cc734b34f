// Package validator provides a small validation abstraction for domain
// structs, most importantly recipient records parsed from a campaign source.
//
// Callers depend on the Validator interface so validation rules stay in one
// place and can be swapped in tests. The concrete implementation is backed by
// go-playground/validator v10 and registers the custom "mailaddr" rule used
// for recipient addresses.
package validator
