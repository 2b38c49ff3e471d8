// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - OCRProvider: at least one extraction provider (the local engine)
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for generative stages
//   - SessionStore: In-memory chat sessions
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades to rule-based fallbacks:
//
//   - LLMService: generative summaries and chat answers. Without it,
//     summaries are extractive and chat returns the fixed fallback answer.
//   - LanguageDetector (cloud): without it, the heuristic detector runs alone.
//   - Translator: without it, translation requests fail with ErrTranslatorUnavailable.
//   - AnalysisStore: without it, analyses are not kept in history.
//   - ChatHistoryStore: without it, chat turns live only in memory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
