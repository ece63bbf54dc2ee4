// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package database

import (
	"fmt"
	"io"

	"github.com/tomtom215/wisata/internal/logging"
	"github.com/tomtom215/wisata/internal/recommend"
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}

// malformed reports a dataset problem at a data row. Rows are numbered from
// 1, the header excluded.
func malformed(path string, row int, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if row > 0 {
		return fmt.Errorf("%w: %s row %d: %s", recommend.ErrMalformedInput, path, row, msg)
	}
	return fmt.Errorf("%w: %s: %s", recommend.ErrMalformedInput, path, msg)
}
