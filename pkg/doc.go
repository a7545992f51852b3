// Package pkg provides the core functionality of compiling search pipelines
// and working with the events they run against.
//   - The spl package contains the pipeline-to-SQL transpiler and its result types.
//   - The events package contains the event record and iterator used by ingestion and storage.
package pkg
