// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// mapHTTPError converts a non-2xx response into one of the package sentinel
// errors, keeping the status code in the message for diagnostics.
func mapHTTPError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrServerUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrBadRequest, code)
	}
}
