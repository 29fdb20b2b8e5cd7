// Package uniuri generates random strings from a fixed alphabet. The settings
// service uses it for API bearer tokens.
package uniuri
