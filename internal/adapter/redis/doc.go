// Package redis holds the Redis client, its metrics and circuit breaker hooks,
// and the Redis-backed nocache session store.
package redis
