// Package tui holds the small terminal views molard shows from the CLI: the
// spinner displayed while a browser sign-in is pending and the status table.
//
// While the sign-in view owns the screen, log output is switched to the
// channel returned by logging.InitForTUI and rendered under the spinner.
package tui
