// Package domain contains the core types of the querra server: collection
// keys, chunks, the request/response envelope, and domain errors.
//
// These types have no dependencies on adapters or external services.
package domain
