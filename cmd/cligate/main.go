// cligate is an OpenAI-compatible HTTP gateway fronting CLI-based model
// providers: instead of calling a model's HTTP API, it shells out to a
// locally installed CLI tool per the provider/model binding in its config
// file, parses the tool's stdout, and returns an OpenAI chat-completions
// response.
//
// Usage:
//
//	# Start the gateway with the default configuration
//	cligate run
//
//	# Start with a custom configuration file
//	cligate run --config /path/to/config.yaml
//
//	# Inspect configured providers and models
//	cligate providers list
//	cligate providers status <id>
//
//	# Trigger an interactive login flow as a background job
//	cligate providers login <id>
//	cligate jobs get <jobId>
//
//	# Inspect per-model health
//	cligate health snapshot
//
//	# Show version information
//	cligate version
package main

func main() {
	Execute()
}
