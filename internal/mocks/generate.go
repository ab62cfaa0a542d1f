// Package mocks provides mock implementations for testing the positions UI.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the remote API ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockPositionsAPI(ctrl)
//	api.EXPECT().List(gomock.Any()).Return([]position.Position{}, nil)
package mocks

// Generate mock for PositionsAPI interface from internal/ports package.
// This creates MockPositionsAPI with methods for all PositionsAPI interface methods:
// List, Create, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=positions_api_mock.go github.com/target/positions-ui/internal/ports PositionsAPI

// Generate mock for AccountAPI interface from internal/ports package.
// This creates MockAccountAPI with methods for all AccountAPI interface methods:
// Login, Signup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=account_api_mock.go github.com/target/positions-ui/internal/ports AccountAPI
