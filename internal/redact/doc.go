// Package redact scrubs secret-looking strings from text before it is sent to
// an LLM provider.
//
// Probe rationale text quotes material from the audited repository, which may
// contain live credentials. Every string that enters a reviewer or narrator
// prompt passes through [Secrets] first.
package redact
