package network

import (
	"fmt"
	"strings"
)

// Method is an HTTP request method supported by the Manager.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// ParseMethod maps s, case-insensitively, onto a supported Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported http method %q", s)
	}
}

func (m Method) String() string { return string(m) }
