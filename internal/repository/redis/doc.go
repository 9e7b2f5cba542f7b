// Package redis stores visitor state in Redis behind a circuit breaker.
package redis
