package domain

import "errors"

var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Signup Validation Errors
	ErrFieldsRequired   = errors.New("username and password are required")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Story Request Validation Errors
	ErrInvalidStyle         = errors.New("style is not one of the supported story styles")
	ErrSceneCountOutOfRange = errors.New("scene count is outside the allowed range")

	// Pipeline & Output Errors
	ErrPipelineFailed = errors.New("story generation pipeline failed")
	ErrNoBundle       = errors.New("no generated video available")

	// Navigation & Session Errors
	ErrInvalidAction   = errors.New("action is not valid for the current page")
	ErrSessionNotFound = errors.New("session not found")

	// Artifact Errors
	ErrArtifactNotFound = errors.New("artifact not found")
)
