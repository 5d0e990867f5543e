// Package startup loads configuration and produces the structured startup
// and shutdown log output. Configuration comes from an optional YAML file
// plus environment variables, with the environment taking precedence.
package startup
