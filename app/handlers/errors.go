// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-obvious/server/request"
	"github.com/rs/zerolog/log"

	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/types"
)

// errNotReady is the "models not loaded" error (spec §7 "NotReady");
// httpError maps it to 503. No handler in this package returns it.
var errNotReady = errors.New("models not loaded")

// httpError translates the error taxonomy of spec §7 into a status code and
// writes a structured JSON error body, the way the teacher's handlers use
// request.Reply for both success and failure paths.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrInvalidInterval):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	request.Reply(r, w, map[string]string{"error": err.Error()}, status)
}
