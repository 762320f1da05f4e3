// Package claxerrors contains all common errors used by the client.
package claxerrors

import "fmt"

var ErrExpiryNotFound = fmt.Errorf("the token expiry cannot be found")
