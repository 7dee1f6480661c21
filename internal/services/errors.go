// Package services defines the business logic for profiles, surveys, groups,
// and compatibility report generation. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Report-pipeline errors.
var (
	// ErrMissingProfile indicates that a member has no profile row. Identity
	// and display data are mandatory, so this is fatal for that member's
	// participation in any report.
	ErrMissingProfile = errors.New("profile not found")

	// ErrGenerationFailed indicates that the generative-language backend call
	// itself errored (network, quota, auth). Not retried here; callers may
	// fall back to ad hoc non-persisted generation.
	ErrGenerationFailed = errors.New("report generation failed")

	// ErrParseFailed indicates that the backend responded but its output was
	// not a valid report after fence stripping. Callers treat this exactly
	// like ErrGenerationFailed.
	ErrParseFailed = errors.New("report output could not be parsed")

	// ErrStorageUnavailable indicates that the results store rejected the
	// operation or has not been provisioned; callers fall back to ad hoc
	// generation without persistence.
	ErrStorageUnavailable = errors.New("result storage unavailable")

	// ErrNoResults indicates that a group has no stored pairwise results to
	// aggregate over.
	ErrNoResults = errors.New("no compatibility results for group")
)

// Group-membership errors.
var (
	// ErrGroupNotFound indicates that the requested group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAlreadyMember is returned when a user attempts to join a group they
	// already belong to.
	ErrAlreadyMember = errors.New("already a member of this group")

	// ErrNotMember is returned for operations that require membership the
	// user does not have.
	ErrNotMember = errors.New("not a member of this group")

	// ErrCreatorCannotLeave is returned when the group's creator attempts to
	// leave. The creator may only delete the whole group.
	ErrCreatorCannotLeave = errors.New("group creator cannot leave; delete the group instead")

	// ErrNotCreator is returned when someone other than the creator attempts
	// to delete the group.
	ErrNotCreator = errors.New("only the group creator can delete the group")

	// ErrTooFewMembers is returned when a group-level report is requested for
	// a group with fewer than two members.
	ErrTooFewMembers = errors.New("group needs at least two members")
)

// Input-validation errors.
var (
	// ErrEmptyName is returned when a profile or group name is blank.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrInvalidAnswer is returned when a survey answer is outside 1..5.
	ErrInvalidAnswer = errors.New("survey answers must be integers from 1 to 5")
)
