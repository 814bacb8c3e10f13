// Package reportfmt renders parsed type-size reports.
//
// Report (dto.go) is the serialisable shape of a run; it is what the JSON
// and HTML outputs, the disk cache and the HTTP API exchange. Renderers:
//
//   - Pretty: an indented, coloured text tree for terminals.
//   - JSON: the full Report document.
//   - HTML: a page with collapsible trees, written into an output directory
//     together with its static assets.
package reportfmt
