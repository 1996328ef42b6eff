// Package fetchstore_sdk bootstraps a fetch.Client from configuration.
//
// Settings come from FETCHSTORE_* environment variables, an optional .env
// file and an optional config file, in that order of precedence. The runtime
// mode selects the transport: "http" talks to FETCHSTORE_API_URL, "mock"
// serves an in-memory sandbox seeded from FETCHSTORE_MOCK_SEED, and "auto"
// picks http when an API URL is configured and mock otherwise.
package fetchstore_sdk
