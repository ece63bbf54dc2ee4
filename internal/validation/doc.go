// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package validation provides struct validation using go-playground/validator v10.
//
// One shared validator serves both the HTTP request structs of internal/api
// and the configuration structs of internal/config. Errors are reported
// with the external field name (query parameter, JSON key or koanf key)
// and convert to the API's VALIDATION_ERROR format.
//
// # Quick Start
//
//	type recommendationsParams struct {
//	    TopN int `query:"top_n" validate:"min=0,max=50"`
//	}
//
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Custom Tags
//
//   - csvfile: the value is a path ending in .csv
package validation
