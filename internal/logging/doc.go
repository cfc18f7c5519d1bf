// Package logging provides concrete implementations of the miqa.Logger interface.
package logging
