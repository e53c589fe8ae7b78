// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors defines the operator-facing error taxonomy used throughout
// Sigil: every error surfaced to the user carries a short message, a detail
// explaining what went wrong, and a suggestion for how to fix it.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Kind classifies an error for JSON rendering; every kind exits with code 1.
type Kind string

const (
	KindConfig      Kind = "config"
	KindInput       Kind = "input"
	KindPermission  Kind = "permission"
	KindNetwork     Kind = "network"
	KindAcquisition Kind = "acquisition"
	KindInternal    Kind = "internal"
	KindLifecycle   Kind = "lifecycle"
)

// UserError is a structured, operator-facing error.
//
// Message is a short, human summary. Detail explains the underlying cause.
// Suggestion tells the operator what to do next. Cause, if present, is the
// wrapped underlying error (available via errors.Unwrap).
type UserError struct {
	Kind       Kind
	Message    string
	Detail     string
	Suggestion string
	Cause      error
}

func (e *UserError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, message, detail, suggestion string, cause error) *UserError {
	return &UserError{Kind: kind, Message: message, Detail: detail, Suggestion: suggestion, Cause: cause}
}

// NewConfigError reports a problem loading or validating configuration.
func NewConfigError(message, detail, suggestion string, cause error) *UserError {
	return newError(KindConfig, message, detail, suggestion, cause)
}

// NewInputError reports invalid operator input (bad flags, missing confirmation).
func NewInputError(message, detail, suggestion string) *UserError {
	return newError(KindInput, message, detail, suggestion, nil)
}

// NewPermissionError reports a filesystem permission or ownership failure.
func NewPermissionError(message, detail, suggestion string, cause error) *UserError {
	return newError(KindPermission, message, detail, suggestion, cause)
}

// NewNetworkError reports a failure reaching an external collaborator.
func NewNetworkError(message, detail, suggestion string, cause error) *UserError {
	return newError(KindNetwork, message, detail, suggestion, cause)
}

// NewAcquisitionError reports a failure staging bytes into quarantine.
func NewAcquisitionError(message, detail, suggestion string, cause error) *UserError {
	return newError(KindAcquisition, message, detail, suggestion, cause)
}

// NewInternalError reports a condition that should never happen.
func NewInternalError(message, detail, suggestion string, cause error) *UserError {
	return newError(KindInternal, message, detail, suggestion, cause)
}

// NewLifecycleError reports an invalid quarantine state transition.
func NewLifecycleError(message, detail, suggestion string) *UserError {
	return newError(KindLifecycle, message, detail, suggestion, nil)
}

// jsonError is the wire shape used when --json output is active.
type jsonError struct {
	Error      string `json:"error"`
	Kind       Kind   `json:"kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// FatalError prints err to stderr (or stdout as JSON, when jsonMode is set)
// and terminates the process with exit code 1. Operational errors always map
// to exit 1 regardless of any scan verdict, per the exit code contract.
func FatalError(err error, jsonMode bool) {
	if err == nil {
		return
	}

	var ue *UserError
	if errors.As(err, &ue) {
		if jsonMode {
			_ = json.NewEncoder(os.Stdout).Encode(jsonError{
				Error:      ue.Message,
				Kind:       ue.Kind,
				Detail:     ue.Detail,
				Suggestion: ue.Suggestion,
			})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", ue.Message)
			if ue.Detail != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", ue.Detail)
			}
			if ue.Suggestion != "" {
				fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", ue.Suggestion)
			}
			if ue.Cause != nil {
				fmt.Fprintf(os.Stderr, "  Cause: %v\n", ue.Cause)
			}
		}
		os.Exit(1)
	}

	if jsonMode {
		_ = json.NewEncoder(os.Stdout).Encode(jsonError{Error: err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
