// Package ai defines the embedding abstraction used by the neural retrieval
// backend.
//
// The Embedder interface decouples query encoding from any particular model
// service. The openai subpackage implements it against OpenAI-compatible
// embedding APIs (including local servers such as Ollama); the mock
// subpackage provides a deterministic implementation for tests and seeding.
package ai
