// Package nixfile locates and edits package declarations inside Nix files
// without parsing the Nix language.
//
// Two textual shapes are treated as structured data:
//
//   - the package list, `with pkgs; [ firefox git htop ]`, found by
//     bracket-depth scanning that skips comments and strings;
//   - the per-package option line, `programs.firefox.enable = true;`,
//     matched one line at a time.
//
// Everything outside those spans is opaque text and is never rewritten.
// All operations take an immutable Document and return a new one, so a
// failed edit can never leave a half-written result behind.
//
// When a file contains several package lists the first one by byte
// offset is used.
package nixfile
