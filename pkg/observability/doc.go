/*
Package observability turns engine lifecycle events into logs and
Prometheus metrics.

Everything here is exposed as domain.LifecycleHooks so it can be combined
and handed to the agent with WithLifecycleHooks.
*/
package observability
