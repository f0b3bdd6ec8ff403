// Package integration_tests holds end-to-end tests that load HCL documents
// through the application and check recompute behavior from the outside.
// Each subdirectory groups one area of behavior.
package integration_tests
