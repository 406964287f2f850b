// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"fmt"
	"net/url"
)

// validateBaseURL accepts http/https URLs with a host and an optional path
// prefix (for example https://api.openai.com/v1). Query strings and fragments
// are rejected since clients append their own.
func validateBaseURL(rawURL, fieldName string) error {
	u, err := parseHTTPURL(rawURL, fieldName)
	if err != nil {
		return err
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, u.RawQuery)
	}
	if u.Fragment != "" {
		return fmt.Errorf("%s should not contain a fragment", fieldName)
	}
	return nil
}

// validateCallbackURL accepts any absolute http/https URL.
func validateCallbackURL(rawURL, fieldName string) error {
	_, err := parseHTTPURL(rawURL, fieldName)
	return err
}

func parseHTTPURL(rawURL, fieldName string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%s is required", fieldName)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s host is required", fieldName)
	}
	return u, nil
}
