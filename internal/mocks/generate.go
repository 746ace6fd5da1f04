// Package mocks provides mock implementations of the ports used by the FreelanceHub services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockUserAPI(ctrl)
//	api.EXPECT().FetchUser(gomock.Any(), model.UserID("1")).Return(profile, nil)
package mocks

// Generate mock for the UserAPI port (the external user REST API):
// Register, Login, ListUsers, FetchUser, UpdateUser, UpdateProfilePicture, DeleteUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_api_mock.go github.com/freelancehub/web/internal/ports UserAPI

// Generate mock for the JobStore port: ListJobs, CreateJob
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_store_mock.go github.com/freelancehub/web/internal/ports JobStore

// Generate mock for the SessionStore port: Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/freelancehub/web/internal/ports SessionStore
