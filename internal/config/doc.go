// Package config provides configuration structures and utilities for sitesearch.
// It defines the list of sites to index, the crawler identity and limits,
// the HTTP API settings and the database location, and loads them from a
// YAML file, a dotenv file and SITESEARCH_* environment variables.
package config
