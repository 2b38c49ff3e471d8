// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The analysis pipeline lives here: extraction with provider fallback,
// language detection, clause segmentation, risk scoring, summarisation
// and the grounded QA engine. Every external call goes through the
// retry policy in retry.go.
package services
