// Package discovery lists candidate images below a root directory.
package discovery
