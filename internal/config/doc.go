// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry point is [GetAgentConfig], which merges all sources into a
// [StructuredConfig], maps it onto the runtime [AgentConfig] view, clamps
// bounded values (the idle interval in particular) and validates the result.
package config
