// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc/codes"

	"github.com/canonical/inventory-identity/internal/types"
)

func TestErrorResponse(t *testing.T) {
	verr := types.NewValidationError()
	verr.Add("password", "too short")

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
		expectedCode    codes.Code
	}{
		{name: "invalid credentials", err: types.ErrInvalidCredentials, expectedStatus: 401, expectedMessage: MessageLoginAgain, expectedCode: codes.Unauthenticated},
		{name: "expired session", err: fmt.Errorf("wrap: %w", types.ErrSessionExpired), expectedStatus: 401, expectedMessage: MessageLoginAgain, expectedCode: codes.Unauthenticated},
		{name: "missing session", err: types.ErrSessionNotFound, expectedStatus: 401, expectedMessage: MessageLoginAgain, expectedCode: codes.Unauthenticated},
		{name: "unauthorized", err: types.ErrUnauthorized, expectedStatus: 403, expectedMessage: MessageForbidden, expectedCode: codes.PermissionDenied},
		{name: "validation", err: verr, expectedStatus: 422, expectedMessage: "validation failed", expectedCode: codes.InvalidArgument},
		{name: "duplicate email", err: types.ErrDuplicateEmail, expectedStatus: 409, expectedMessage: "email already taken", expectedCode: codes.AlreadyExists},
		{name: "invitation expired is verbatim for admins", err: types.ErrInvitationExpired, expectedStatus: 410, expectedMessage: "invitation expired", expectedCode: codes.FailedPrecondition},
		{name: "unknown", err: errors.New("db down"), expectedStatus: 500, expectedMessage: MessageInternal, expectedCode: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, r := ErrorResponse(tt.err)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if r.Message != tt.expectedMessage {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, r.Message)
			}
			if code, _ := GRPCCode(tt.err); code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, code)
			}
		})
	}
}

func TestInviteeErrorResponseHidesReason(t *testing.T) {
	for _, err := range []error{types.ErrInvitationNotFound, types.ErrInvitationExpired, types.ErrInvitationAlreadyAccepted, types.ErrDuplicateEmail} {
		_, r := InviteeErrorResponse(err)
		if r.Message != MessageInvitationInvalid {
			t.Errorf("%v leaked as %q", err, r.Message)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	if err := WriteJSON(rr, http.StatusCreated, Response{Data: map[string]string{"id": "1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var r Response
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if r.Status != http.StatusCreated || r.Message != "Created" {
		t.Fatalf("unexpected envelope %+v", r)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatal("expected json content type")
	}
}
