// Package huntarr provides the HTTP client for the Huntarr backend API.
package huntarr
