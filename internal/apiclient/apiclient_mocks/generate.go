package apiclient_mocks

//go:generate mockgen -source=../interfaces.go -destination=apiclient_mocks.go -package=apiclient_mocks

// This file contains the go:generate directive to generate mocks for the API client interfaces.
// To regenerate the mocks, run:
//   go generate ./internal/apiclient/apiclient_mocks
