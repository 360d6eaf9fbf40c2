// Package types defines the KV and Backend interfaces, the inventory entity
// types, backend configuration, and the standard errors shared by the
// studiobook storage layer and its consumers.
package types
