/*
Package observability provides tools for monitoring the workflow engine.

It bridges engine lifecycle hooks and analysis cache hooks into Prometheus
counters and structured log events, and exposes them via a scrape handler.
*/
package observability
