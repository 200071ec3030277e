// Package evaluator sends rendered prompts to a documentation evaluation
// service and returns its free-text responses.
//
// Two providers are available: the Anthropic Messages API and an offline
// static provider that either replays canned responses or synthesizes one
// from the prompt.
//
// # Basic Usage
//
//	// Create evaluator (auto-detects provider from environment)
//	ev, err := evaluator.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ev.Close()
//
//	resp, err := ev.Evaluate(ctx, evaluator.Request{Prompt: prompt})
//	fmt.Println(resp.Text)
//
// # Provider Selection
//
//  1. If DOCAUDIT_PROVIDER is set → use the named provider
//  2. Else if ANTHROPIC_API_KEY is set → use Anthropic
//  3. Else → fall back to the static provider (offline mode)
//
// # Caching
//
// Responses are cached in an LRU keyed by SHA-256 of model and prompt, so a
// rerun over unchanged sources does not repeat API calls:
//
//	cache := evaluator.NewCache(1000)
//	key := evaluator.CacheKey(model, prompt)
//
// # Error Handling
//
// Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff. Other 4xx responses are wrapped in a PermanentError
// and returned immediately:
//
//	resp, err := ev.Evaluate(ctx, req)
//	var perm *evaluator.PermanentError
//	if errors.As(err, &perm) {
//	    // bad key or malformed request
//	}
package evaluator
