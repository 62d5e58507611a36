// Package http provides the request engine for the Browsergrid SDK:
// URL construction against a configured base URL, default header and API key
// handling, per-attempt timeouts, typed error classification, and a retry
// mechanism with exponential backoff and jitter.
//
// Error Classification
//   - Non-2xx responses are classified into a closed ErrorType set, first
//     from the structured error body ({error, message, details?, retryAfter?}),
//     then from the status code alone:
//     400 INVALID_REQUEST, 401 UNAUTHORIZED, 404 SESSION_NOT_FOUND,
//     429 RATE_LIMIT_EXCEEDED, 500/502/503/504 INTERNAL_SERVER_ERROR,
//     anything else UNKNOWN_ERROR.
//   - Transport failures become NETWORK_ERROR; attempts cut off by the
//     per-attempt timeout become TIMEOUT_ERROR.
//
// Retries
//   - Controlled via Config.MaxRetries and Request.Retries; a budget of n
//     allows n+1 total attempts.
//   - Only RATE_LIMIT_EXCEEDED, INTERNAL_SERVER_ERROR, NETWORK_ERROR, and
//     TIMEOUT_ERROR are retried. Other classifications surface immediately.
//
// Backoff Strategy
//   - Exponential: delay = RetryDelay(err) * 2^attempt, where RetryDelay is
//     the server-suggested retryAfter when present, else a per-kind default.
//   - Random jitter in [0, 1s) is added on top.
//   - The total delay is capped at 60 seconds.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each attempt.
//   - Each attempt owns one timeout context, released on every exit path.
//   - The per-attempt timeout governs attempts independently: a call retried
//     three times with a 30s timeout can occupy up to 3*30s plus backoff.
package http
