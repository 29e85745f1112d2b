// Package providers implements the Provider interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), and Ollama / LMStudio
// for local models.
//
// All providers share a common RetryPolicy with exponential back-off. Rate
// limits (429) and server errors (5xx) are retried; authentication errors are
// returned immediately and can be detected with [IsAuthError]. HTTP endpoints
// are held in struct fields so tests can redirect calls to local httptest
// servers without making live API requests.
//
// Use [New] to obtain a Provider by provider name and model string.
package providers
