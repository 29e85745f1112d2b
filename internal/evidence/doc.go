// Package evidence defines the immutable fact records produced by forensic
// probes and the namespaced store the adjudication engine reads them from.
//
// Evidence values are created once by a probe and never modified. The store
// keys entries as "{producer}_{dimensionID}" so that independent probes can
// write concurrently without colliding. Completeness is enforced by
// [Store.Require], which returns an *IncompleteError naming every missing key
// rather than letting an audit proceed on partial facts.
//
// Evidence.Detail holds raw subject material (code snippets, doc excerpts).
// It is excluded from [ContextText] so it can never reach a reviewer prompt;
// an adversarial repository must not be able to inject instructions into the
// reviewer context through its own contents.
package evidence
