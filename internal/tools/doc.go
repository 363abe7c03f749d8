// Package tools provides the invocable capabilities the model can request
// and the registries that execute them.
//
// # Overview
//
// Two registries exist side by side:
//
//   - Standard ([NewStandardRegistry]): search, wiki_search, get_weather,
//     calculator, fetch_page. Outbound HTTP only.
//   - Privileged ([NewPrivilegedRegistry]): execute_python, execute_command,
//     list_files, read_file, get_system_info. These touch the host and are
//     only reachable in computer-use mode, which selects this registry
//     INSTEAD OF the standard one.
//
// # Execution pipeline
//
// [Registry.Execute] is the single choke point for every invocation. Each
// call passes, in order: argument schema validation, the tool's guard (the
// privileged tools route their payloads through the security gate here),
// and a deadline-bounded handler run. A failure at any stage is classified
// by a sentinel error and never reaches the stage after it.
//
// # Enablement
//
// Tools are enabled by default. A session preference map records explicit
// choices only; [Registry.Definitions] simply omits disabled tools from
// what the model sees, and [Registry.Execute] callers turn a request for an
// omitted tool into a tool-message refusal.
//
// # Adding a tool
//
// Declare an input struct with json/jsonschema tags, build the tool with
// [NewTool] (the schema is inferred from the struct), and register it in
// the appropriate composition function in registries.go. Handlers return
// formatted text; the model reads prose, not JSON.
package tools
