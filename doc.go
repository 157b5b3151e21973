// Package slate provides a provider-agnostic pipeline for LLM analysis
// requests across the OpenAI, Anthropic, Gemini, xAI, and DeepSeek
// vendor families.
//
// A request intent (model descriptor, prompt, tools) is built into a
// vendor-shaped payload, dispatched, and parsed back into one
// canonical response shape, synchronously or as a normalized chunk
// stream. Token estimation, input budgets, and batch packing live in
// the token and batch packages; vendor wire formats live under
// provider/.
package slate
