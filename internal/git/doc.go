// Package git reads revision information from the package's repository so the
// landing page can name the commit it was generated from.
package git
