// Package server exposes text scanning and policy evaluation over HTTP.
package server
