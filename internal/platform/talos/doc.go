// Package talos wraps the Talos tooling talhybrid depends on.
//
// Machine configs are produced by talosctl gen config, driven through a
// Runner so tests can substitute the subprocess. The secrets bundle shared
// by all generated configs is created with the Talos machinery library.
// The image factory client submits schematics and builds image URLs.
package talos
