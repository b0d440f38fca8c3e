// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/canonical/inventory-identity/internal/types"
)

const (
	MessageLoginAgain        = "please log in again"
	MessageForbidden         = "forbidden"
	MessageInvitationInvalid = "this invitation is no longer valid"
	MessageInternal          = "internal server error"
)

// ErrorResponse maps domain errors for callers that are trusted operators.
// Authentication failures are collapsed into one message whoever asks.
func ErrorResponse(err error) (int, Response) {
	var verr *types.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, Response{Message: types.ErrValidationFailed.Error(), Fields: verr.Fields}
	case errors.Is(err, types.ErrInvalidCredentials),
		errors.Is(err, types.ErrSessionExpired),
		errors.Is(err, types.ErrSessionNotFound),
		errors.Is(err, types.ErrPrincipalInactive):
		return http.StatusUnauthorized, Response{Message: MessageLoginAgain}
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden, Response{Message: MessageForbidden}
	case errors.Is(err, types.ErrDuplicateEmail):
		return http.StatusConflict, Response{Message: types.ErrDuplicateEmail.Error()}
	case errors.Is(err, types.ErrInvitationNotFound),
		errors.Is(err, types.ErrPrincipalNotFound),
		errors.Is(err, types.ErrTenantNotFound):
		return http.StatusNotFound, Response{Message: err.Error()}
	case errors.Is(err, types.ErrInvitationExpired),
		errors.Is(err, types.ErrInvitationAlreadyAccepted):
		return http.StatusGone, Response{Message: err.Error()}
	}

	return http.StatusInternalServerError, Response{Message: MessageInternal}
}

// InviteeErrorResponse never tells an invitee why the invitation failed.
func InviteeErrorResponse(err error) (int, Response) {
	switch {
	case errors.Is(err, types.ErrInvitationNotFound):
		return http.StatusNotFound, Response{Message: MessageInvitationInvalid}
	case errors.Is(err, types.ErrInvitationExpired),
		errors.Is(err, types.ErrInvitationAlreadyAccepted),
		errors.Is(err, types.ErrDuplicateEmail):
		return http.StatusGone, Response{Message: MessageInvitationInvalid}
	}

	return ErrorResponse(err)
}

// GRPCCode is the gRPC counterpart of ErrorResponse.
func GRPCCode(err error) (codes.Code, string) {
	status, r := ErrorResponse(err)

	switch status {
	case http.StatusUnauthorized:
		return codes.Unauthenticated, r.Message
	case http.StatusForbidden:
		return codes.PermissionDenied, r.Message
	case http.StatusUnprocessableEntity:
		return codes.InvalidArgument, err.Error()
	case http.StatusConflict:
		return codes.AlreadyExists, r.Message
	case http.StatusNotFound:
		return codes.NotFound, r.Message
	case http.StatusGone:
		return codes.FailedPrecondition, r.Message
	}

	return codes.Internal, r.Message
}
