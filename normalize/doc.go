// Package normalize converts raw provider output into a structured,
// renderable document.
//
// Providers return JSON, Markdown, plain prose, or a mixture; Normalize
// turns any of them into a NormalizedResponse: an ordered list of typed
// sections plus optional citations and follow-up questions. Three parse
// strategies are attempted in order, first success wins:
//
//  1. Direct JSON (the whole input, or a fenced ```json block) mapped
//     through a fixed key table.
//  2. Structured Markdown scanned by an explicit line-classifier state
//     machine (headings, numbered sections, lists, tables).
//  3. An unstructured fallback that lightly normalizes list-like prose
//     into a single raw section.
//
// Normalize never fails: malformed input degrades to a raw section and a
// panic anywhere in the pipeline degrades to an error section, so callers
// always receive a renderable document.
package normalize
