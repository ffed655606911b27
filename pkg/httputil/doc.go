// Package httputil provides HTTP helpers for trace sources.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff. Only errors wrapped
// with [RetryableError] are retried, so callers decide what is transient:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    if httputil.RetryableStatus(resp.StatusCode) {
//	        return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
//	    }
//	    ...
//	})
//
// The search source retries network failures, 429 and 5xx responses this
// way; 4xx responses fail immediately.
package httputil
