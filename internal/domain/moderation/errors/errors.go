// Package errors contains domain-specific errors for the moderation domain
package errors

import (
	pkgerrors "github.com/Stam1n/telegram-bot/pkg/errors"
)

// Domain errors for moderation operations
var (
	ErrNotTracked      = pkgerrors.NewNotFoundError("identity is not tracked in this chat")
	ErrNotPrivileged   = pkgerrors.NewPermissionError("only chat administrators can do this")
	ErrNotOwner        = pkgerrors.NewPermissionError("only the bot owner can do this")
	ErrNotBot          = pkgerrors.NewValidationError("target is not a bot")
	ErrInvalidArgument = pkgerrors.NewValidationError("invalid id or handle")
	ErrHandleNotFound  = pkgerrors.NewNotFoundError("handle could not be resolved")
	ErrMessageNotFound = pkgerrors.NewNotFoundError("message or chat not found")
	ErrForbidden       = pkgerrors.NewPermissionError("telegram refused the request")
	ErrTelegramAPI     = pkgerrors.NewInternalError("telegram API error")
	ErrPersistence     = pkgerrors.NewInternalError("tracking state persistence failed")
	ErrMalformedState  = pkgerrors.NewValidationError("persisted tracking state is malformed")
	ErrInvalidCallback = pkgerrors.NewValidationError("invalid callback data")
)
