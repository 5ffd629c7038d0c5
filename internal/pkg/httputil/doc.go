// Package httputil provides shared JSON response helpers for the dashboard
// API handlers, so every endpoint emits the same envelope and error shape.
package httputil
